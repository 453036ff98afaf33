// Package qrcode renders applicant QR codes and stores the PNG files.
package qrcode

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const imageSize = 300

// Storage persists a rendered image under filename.
type Storage interface {
	Save(ctx context.Context, filename string, data []byte) error
}

// Generator builds the examination-profile QR for an applicant number.
type Generator struct {
	baseURL string
	storage Storage
}

func NewGenerator(frontendBaseURL string, storage Storage) *Generator {
	return &Generator{baseURL: strings.TrimRight(frontendBaseURL, "/"), storage: storage}
}

func Filename(applicantNumber string) string {
	return applicantNumber + "_qrcode.png"
}

func (g *Generator) ProfileURL(applicantNumber string) string {
	return g.baseURL + "/examination_profile/" + applicantNumber
}

// Generate renders and stores the QR for applicantNumber and returns its filename.
func (g *Generator) Generate(ctx context.Context, applicantNumber string) (string, error) {
	data, err := Render(g.ProfileURL(applicantNumber), imageSize)
	if err != nil {
		return "", err
	}
	name := Filename(applicantNumber)
	if err := g.storage.Save(ctx, name, data); err != nil {
		return "", fmt.Errorf("store qr %s: %w", name, err)
	}
	return name, nil
}

// Render encodes payload as a size x size black-on-white PNG.
func Render(payload string, size int) ([]byte, error) {
	code, err := qr.Encode(payload, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, fmt.Errorf("qr scale: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qr png: %w", err)
	}
	return buf.Bytes(), nil
}
