package archive

import "errors"

var (
	ErrInvalidConfig      = errors.New("archive.invalid_config")
	ErrInvalidKey         = errors.New("archive.invalid_key")
	ErrFailedToLoadConfig = errors.New("archive.failed_to_load_aws_config")
	ErrFailedToWrite      = errors.New("archive.failed_to_write")
	ErrBucketNotFound     = errors.New("archive.bucket_not_found")
	ErrAccessDenied       = errors.New("archive.access_denied")
	ErrServiceUnavailable = errors.New("archive.service_unavailable")
)
