package server

import (
	"context"
	"io"

	"github.com/shareforge/shareforge/internal/file"
	"github.com/shareforge/shareforge/internal/reverseshare"
	"github.com/shareforge/shareforge/internal/share"
)

// archiveSource feeds the archive packager from the file manager
type archiveSource struct {
	files *file.Manager
}

func (a *archiveSource) List(ctx context.Context, shareID string) ([]share.FileEntry, error) {
	files, err := a.files.List(ctx, shareID)
	if err != nil {
		return nil, err
	}
	entries := make([]share.FileEntry, 0, len(files))
	for _, f := range files {
		entries = append(entries, share.FileEntry{ID: f.ID, Name: f.Name})
	}
	return entries, nil
}

func (a *archiveSource) ReadStream(ctx context.Context, shareID, fileID string) (io.ReadCloser, error) {
	return a.files.ReadStream(ctx, shareID, fileID)
}

// reverseShareBinder exposes invitations to the share lifecycle manager
type reverseShareBinder struct {
	invitations *reverseshare.Manager
}

func (b *reverseShareBinder) GetByToken(ctx context.Context, token string) (*share.ReverseShareInfo, error) {
	if token == "" {
		return nil, nil
	}
	rs, err := b.invitations.GetUsable(ctx, token)
	if err != nil {
		if err == reverseshare.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &share.ReverseShareInfo{
		Token:              rs.Token,
		ShareExpiration:    rs.ShareExpiration,
		RemainingUses:      rs.RemainingUses,
		NotifyOnCompletion: rs.SendEmailNotification,
		CreatorEmail:       rs.CreatorEmail,
	}, nil
}

func (b *reverseShareBinder) BindShare(ctx context.Context, token, shareID string) error {
	return b.invitations.BindShare(ctx, token, shareID)
}

func (b *reverseShareBinder) DecrementRemainingUses(ctx context.Context, token string) error {
	return b.invitations.DecrementRemainingUses(ctx, token)
}
