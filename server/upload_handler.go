package server

import (
	"database/sql"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"melodex/core/catalog"
	"melodex/core/meta"
	"melodex/logger"
	"melodex/model"
)

const maxUploadMemory = 32 << 20 // 32MB

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)
var multipleSpaces = regexp.MustCompile(`\s+`)

// generateSafeFilenamePrefix builds an object-key-safe name from the song's
// display fields.
func generateSafeFilenamePrefix(title, artist string) string {
	if strings.TrimSpace(title) == "" {
		title = "Untitled_Song"
	}

	var parts []string
	if strings.TrimSpace(artist) != "" {
		parts = append(parts, strings.TrimSpace(artist))
	}
	parts = append(parts, strings.TrimSpace(title))

	base := strings.Join(parts, " - ")
	base = multipleSpaces.ReplaceAllString(base, "_")
	base = nonAlphaNumeric.ReplaceAllString(base, "")

	maxLength := 150
	if len(base) > maxLength {
		base = base[:maxLength]
	}
	if base == "" {
		base = "fallback_filename"
	}
	return base
}

// UploadSongHandler accepts an audio upload and creates its song row.
// Expected multipart form fields:
// - songFile: the audio file (MP3, FLAC or WAV)
// - title: song title (optional, falls back to the file's tags)
// - artistId, genreId: owning references (required)
// - albumId: optional album reference
// - coverFile: cover art image (optional)
// The file is probed for tags and duration, stored in the blob store under
// an audio/ key, and the duration persisted in its canonical form.
func (h *APIHandler) UploadSongHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse multipart form: %v", err))
		return
	}

	songFile, songHeader, err := r.FormFile("songFile")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'songFile' in form")
		return
	}
	defer songFile.Close()

	artistID, err := strconv.ParseInt(r.FormValue("artistId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid artist id")
		return
	}
	genreID, err := strconv.ParseInt(r.FormValue("genreId"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid genre id")
		return
	}

	song := &model.Song{ArtistID: artistID, GenreID: genreID}
	if albumParam := r.FormValue("albumId"); albumParam != "" {
		albumID, err := strconv.ParseInt(albumParam, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid album id")
			return
		}
		song.AlbumID = sql.NullInt64{Int64: albumID, Valid: true}
	}
	if ok := h.checkSongRefs(w, r, song); !ok {
		return
	}

	// Stage the upload in a temp file so it can be probed before it goes
	// to the blob store.
	tempPath, err := stageUpload(h.cfg.UploadDir, songFile, songHeader)
	if err != nil {
		logger.Error("failed to stage upload", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer os.Remove(tempPath)

	info, err := meta.Probe(tempPath)
	if err != nil {
		logger.Error("failed to probe upload", logger.ErrorField(err))
		respondError(w, http.StatusBadRequest, "Unsupported or corrupt audio file")
		return
	}

	song.Title = r.FormValue("title")
	if song.Title == "" {
		song.Title = info.Title
	}
	song.Duration = catalog.FormatCanonical(info.DurationSeconds)

	ext := strings.ToLower(filepath.Ext(songHeader.Filename))
	objectKey := "audio/" + generateSafeFilenamePrefix(song.Title, info.Artist) + ext

	staged, err := os.Open(tempPath)
	if err != nil {
		logger.Error("failed to reopen staged upload", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}
	defer staged.Close()

	st, err := staged.Stat()
	if err != nil {
		logger.Error("failed to stat staged upload", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to process upload")
		return
	}

	if err := h.blobs.Put(r.Context(), objectKey, staged, st.Size(), contentTypeFor(ext)); err != nil {
		logger.Error("failed to store audio", logger.String("key", objectKey), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store audio")
		return
	}
	song.BlobKey = sql.NullString{String: objectKey, Valid: true}

	if coverKey := h.storeCover(r, song.Title); coverKey != "" {
		song.CoverImage = sql.NullString{String: coverKey, Valid: true}
	}

	id, err := h.songRepo.Create(r.Context(), song)
	if err != nil {
		logger.Error("failed to create song", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create song")
		return
	}
	song.ID = id

	logger.Info("uploaded song",
		logger.Int64("song_id", id),
		logger.String("title", song.Title),
		logger.String("key", objectKey))
	respondJSON(w, http.StatusCreated, song)
}

// stageUpload copies the multipart file to a temp file under dir and
// returns its path.
func stageUpload(dir string, f multipart.File, header *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	temp, err := os.CreateTemp(dir, "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer temp.Close()

	if _, err := io.Copy(temp, f); err != nil {
		os.Remove(temp.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return temp.Name(), nil
}

// storeCover uploads an optional cover image and returns its object key, or
// empty when none was sent. A cover failure never fails the song upload.
func (h *APIHandler) storeCover(r *http.Request, title string) string {
	coverFile, coverHeader, err := r.FormFile("coverFile")
	if err != nil {
		return ""
	}
	defer coverFile.Close()

	ext := strings.ToLower(filepath.Ext(coverHeader.Filename))
	key := "covers/" + generateSafeFilenamePrefix(title, "") + ext
	if err := h.blobs.Put(r.Context(), key, coverFile, coverHeader.Size, coverContentType(ext)); err != nil {
		logger.Warn("failed to store cover", logger.String("key", key), logger.ErrorField(err))
		return ""
	}
	return key
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

func coverContentType(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
