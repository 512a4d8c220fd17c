package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"sportrent/internal/config"
	"sportrent/internal/ids"
	"sportrent/internal/media/sniffer"
	"sportrent/internal/storage"
)

var ErrFileTooLarge = errors.New("file exceeds the upload size limit")

// UploadService validates and stores multipart image uploads: content sniff
// cross-checked against the declared type, size cap, ksuid filename, disk
// write, then a best-effort mirror to the archive bucket when configured.
type UploadService struct {
	local   *storage.LocalStore
	archive *storage.ObjectStore
	cfg     *config.AppConfig
	log     zerolog.Logger
}

func NewUploadService(local *storage.LocalStore, archive *storage.ObjectStore, cfg *config.AppConfig, log zerolog.Logger) *UploadService {
	return &UploadService{
		local:   local,
		archive: archive,
		cfg:     cfg,
		log:     log,
	}
}

// Save stores one uploaded file and returns its bare filename.
func (s *UploadService) Save(ctx context.Context, header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", errors.New("missing file")
	}
	if header.Size > s.cfg.Storage.MaxUploadSize {
		return "", ErrFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.Storage.MaxUploadSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.Storage.MaxUploadSize {
		return "", ErrFileTooLarge
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return "", err
	}

	// application/octet-stream is what generic clients send when they do not
	// know the type; only a concrete mismatching declaration is rejected.
	declared := sniffer.MimeTypeFromHTTP(http.Header(header.Header))
	if declared == "application/octet-stream" {
		declared = ""
	}
	if declared != "" && declared != result.MIME {
		return "", fmt.Errorf("%w: declared %s, actual %s", sniffer.ErrUnsupportedType, declared, result.MIME)
	}

	filename := fmt.Sprintf("%s.%s", ids.New(), result.Type)
	if err := s.local.Write(filename, data); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.Put(ctx, filename, data, result.MIME); err != nil {
			s.log.Warn().Err(err).Str("file", filename).Msg("archive upload failed")
		}
	}

	return filename, nil
}

// Remove deletes a stored upload by bare filename.
func (s *UploadService) Remove(name string) error {
	return s.local.Remove(name)
}
