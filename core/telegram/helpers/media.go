package helpers

import (
	"path"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// IncomingFile describes an image-bearing attachment extracted from an update.
type IncomingFile struct {
	File     tele.File
	Name     string
	MIME     string
	Size     int64
	AsPhoto  bool
}

// IncomingImage extracts the photo or document attachment from the current
// update. Telegram already reduces photo uploads to their largest size.
func IncomingImage(c tele.Context) (IncomingFile, bool) {
	msg := c.Message()
	if msg == nil {
		return IncomingFile{}, false
	}
	if msg.Photo != nil {
		return IncomingFile{
			File:    msg.Photo.File,
			Name:    "photo.jpg",
			MIME:    "image/jpeg",
			Size:    msg.Photo.FileSize,
			AsPhoto: true,
		}, true
	}
	if msg.Document != nil {
		name := msg.Document.FileName
		if name == "" {
			name = "document"
		}
		return IncomingFile{
			File: msg.Document.File,
			Name: name,
			MIME: msg.Document.MIME,
			Size: msg.Document.FileSize,
		}, true
	}
	return IncomingFile{}, false
}

// Ext returns the lowercase filename extension without the leading dot.
func (f IncomingFile) Ext() string {
	ext := strings.TrimPrefix(path.Ext(f.Name), ".")
	if ext == "" && strings.HasPrefix(f.MIME, "image/") {
		ext = strings.TrimPrefix(f.MIME, "image/")
	}
	return strings.ToLower(ext)
}
