package domain

// ImageRef points to an image hosted in object storage.
type ImageRef struct {
	SecureURL   string
	Key         string
	Folder      string
	ContentType string
	Bytes       int64
	ETag        string
}
