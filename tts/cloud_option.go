package tts

import (
	"google.golang.org/api/option"
)

func withCredentialsFile(path string) []option.ClientOption {
	if path == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(path)}
}
