package files

type RenameRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type FavoriteResponse struct {
	Message    string `json:"message"`
	IsFavorite bool   `json:"is_favorite"`
}

type LinkResponse struct {
	SignedURL string `json:"signedUrl"`
	ExpiresAt string `json:"expires_at"`
}
