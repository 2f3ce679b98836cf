package clamav

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shareforge/shareforge/internal/file"
)

// ShareFiles is the slice of the file layer the scanner needs
type ShareFiles interface {
	List(ctx context.Context, shareID string) ([]*file.File, error)
	ReadStream(ctx context.Context, shareID, fileID string) (io.ReadCloser, error)
	DeleteAll(ctx context.Context, shareID string) error
}

// ShareMarker marks a share as removed with a human readable reason
type ShareMarker interface {
	SetRemovedReason(ctx context.Context, shareID, reason string) error
}

// Scanner scans completed shares with clamd and removes infected ones
type Scanner struct {
	client *Client
	files  ShareFiles
	shares ShareMarker
}

// NewScanner creates a share scanner backed by a clamd client
func NewScanner(client *Client, files ShareFiles, shares ShareMarker) *Scanner {
	return &Scanner{client: client, files: files, shares: shares}
}

// ScanAndRemove scans the share's files in the background. On detection the
// share is marked removed and its files are deleted. Errors are logged, not
// returned; completion never waits for the scan.
func (s *Scanner) ScanAndRemove(shareID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()

		if err := s.scan(ctx, shareID); err != nil {
			logrus.WithError(err).WithField("share_id", shareID).Error("Malware scan failed")
		}
	}()
}

func (s *Scanner) scan(ctx context.Context, shareID string) error {
	start := time.Now()

	files, err := s.files.List(ctx, shareID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	for _, f := range files {
		signature, err := s.scanFile(ctx, shareID, f.ID)
		if err != nil {
			return fmt.Errorf("scan file %s: %w", f.ID, err)
		}
		if signature == "" {
			continue
		}

		logrus.WithFields(logrus.Fields{
			"share_id":  shareID,
			"file_id":   f.ID,
			"file_name": f.Name,
			"signature": signature,
		}).Warn("Malicious file detected, removing share")
		return s.remove(ctx, shareID)
	}

	logrus.WithFields(logrus.Fields{
		"share_id": shareID,
		"files":    len(files),
		"duration": time.Since(start).String(),
	}).Debug("Malware scan clean")
	return nil
}

func (s *Scanner) scanFile(ctx context.Context, shareID, fileID string) (string, error) {
	rc, err := s.files.ReadStream(ctx, shareID, fileID)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.client.Scan(rc)
}

func (s *Scanner) remove(ctx context.Context, shareID string) error {
	if err := s.shares.SetRemovedReason(ctx, shareID, "Malicious file detected"); err != nil {
		return fmt.Errorf("mark removed: %w", err)
	}
	if err := s.files.DeleteAll(ctx, shareID); err != nil {
		return fmt.Errorf("delete files: %w", err)
	}
	return nil
}
