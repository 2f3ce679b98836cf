package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/shareforge/shareforge/internal/share"
)

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	shareID := mux.Vars(r)["id"]

	sh, err := s.shareStore.Get(r.Context(), shareID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if sh.Type != share.TypeFile {
		s.writeError(w, "only FILE shares accept uploads", http.StatusBadRequest)
		return
	}
	if sh.UploadLocked {
		s.writeError(w, "share already completed", http.StatusConflict)
		return
	}

	allowance, err := s.uploadAllowance(r, sh)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if allowance == 0 {
		s.writeError(w, "share size limit reached", http.StatusRequestEntityTooLarge)
		return
	}

	name, data, cleanup, err := uploadPayload(r)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer cleanup()

	if allowance > 0 {
		data = io.LimitReader(data, allowance+1)
	}

	f, err := s.fileManager.Save(r.Context(), shareID, name, data)
	if err != nil {
		s.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if allowance > 0 && f.Size > allowance {
		if err := s.fileManager.Delete(r.Context(), shareID, f.ID); err != nil {
			logrus.WithError(err).WithField("share_id", shareID).Warn("Failed to delete oversized upload")
		}
		s.writeError(w, "file exceeds the share size limit", http.StatusRequestEntityTooLarge)
		return
	}

	s.metrics.FilesUploaded.Inc()
	s.metrics.BytesUploaded.Add(float64(f.Size))
	s.writeJSONStatus(w, http.StatusCreated, f)
}

// uploadAllowance returns the number of bytes the next upload may carry.
// Zero means no further upload is allowed, a negative value means no limit.
func (s *Server) uploadAllowance(r *http.Request, sh *share.Share) (int64, error) {
	limit := s.config.Share.MaxFileSize

	if sh.ReverseShareToken != "" {
		invitation, err := s.reverseShares.Get(r.Context(), sh.ReverseShareToken)
		if err != nil {
			return 0, err
		}
		if invitation.MaxShareSize > 0 {
			used, err := s.fileManager.TotalSize(r.Context(), sh.ID)
			if err != nil {
				return 0, err
			}
			remaining := invitation.MaxShareSize - used
			if remaining <= 0 {
				return 0, nil
			}
			if limit <= 0 || remaining < limit {
				limit = remaining
			}
		}
	}

	if limit <= 0 {
		return -1, nil
	}
	return limit, nil
}

// uploadPayload extracts the file name and content from either a multipart
// form ("file" field) or a raw body with a name query parameter
func uploadPayload(r *http.Request) (string, io.Reader, func(), error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "multipart/form-data" {
		src, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, nil, fmt.Errorf("multipart upload needs a file field")
		}
		return header.Filename, src, func() { src.Close() }, nil
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		return "", nil, nil, fmt.Errorf("raw uploads need a name query parameter")
	}
	return name, r.Body, func() {}, nil
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	sh, ok := s.accessibleShare(w, r)
	if !ok {
		return
	}

	files, err := s.fileManager.List(r.Context(), sh.ID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, files)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	sh, ok := s.accessibleShare(w, r)
	if !ok {
		return
	}
	fileID := mux.Vars(r)["fileId"]

	f, err := s.fileManager.Get(r.Context(), sh.ID, fileID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	src, err := s.fileManager.ReadStream(r.Context(), sh.ID, fileID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	defer src.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.FormatInt(f.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))

	if _, err := io.Copy(w, src); err != nil {
		// Headers are out; nothing left to do but log via middleware status
		return
	}
	s.metrics.FileDownloads.Inc()
}

func (s *Server) handleDownloadZip(w http.ResponseWriter, r *http.Request) {
	sh, ok := s.accessibleShare(w, r)
	if !ok {
		return
	}

	if s.packager == nil {
		s.writeError(w, "archives are not available on this storage backend", http.StatusNotFound)
		return
	}
	if !sh.ZipReady {
		s.writeError(w, "archive is not ready yet", http.StatusConflict)
		return
	}

	archive, err := os.Open(s.packager.ArchivePath(sh.ID))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	defer archive.Close()

	name := sh.Name
	if name == "" {
		name = sh.ID
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name + ".zip"}))

	if _, err := io.Copy(w, archive); err != nil {
		return
	}
	s.metrics.FileDownloads.Inc()
}

// accessibleShare loads a share under the public visibility rules and runs
// the access gate. Writes the error response itself when it returns false.
func (s *Server) accessibleShare(w http.ResponseWriter, r *http.Request) (*share.Share, bool) {
	sh, err := s.shareManager.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeDomainError(w, err)
		return nil, false
	}
	if !s.mayAccess(r, sh) {
		s.writeError(w, "share access token required", http.StatusUnauthorized)
		return nil, false
	}
	return sh, true
}
