package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/media"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// Uploads bundles what file-bearing handlers need to persist media.
type Uploads struct {
	Store    media.Store
	MaxBytes int
	Logger   *zap.Logger
}

func (u Uploads) logger() *zap.Logger {
	if u.Logger == nil {
		return zap.NewNop()
	}
	return u.Logger
}

// requestFields reads named inputs from either a JSON body or a form
// (urlencoded or multipart), so file-bearing endpoints accept both.
type requestFields struct {
	c    *fiber.Ctx
	body map[string]json.RawMessage
}

func readFields(c *fiber.Ctx) (*requestFields, error) {
	f := &requestFields{c: c}
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		return f, nil
	}
	f.body = map[string]json.RawMessage{}
	if len(bytes.TrimSpace(c.Body())) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(c.Body(), &f.body); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	return f, nil
}

func (f *requestFields) raw(name string) []byte {
	if f.body != nil {
		return f.body[name]
	}
	return []byte(f.c.FormValue(name))
}

func (f *requestFields) str(name string) string {
	if f.body == nil {
		return strings.TrimSpace(f.c.FormValue(name))
	}
	raw := bytes.TrimSpace(f.body[name])
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return string(raw)
}

func (f *requestFields) optional(name string) *string {
	if v := f.str(name); v != "" {
		return &v
	}
	return nil
}

// idList decodes a list field. An absent field yields nil so the service
// reports it as missing.
func (f *requestFields) idList(name string) ([]string, error) {
	raw := bytes.TrimSpace(f.raw(name))
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	ids, err := domain.ParseIDList(raw)
	if err != nil {
		return nil, apperrors.NewInvalidField(name, "must be a JSON list of ids")
	}
	return ids, nil
}

// names reads a list given either as JSON or comma-separated.
func (f *requestFields) names(name string) []string {
	raw := bytes.TrimSpace(f.raw(name))
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if list, err := domain.ParseIDList(raw); err == nil {
		return list
	}
	var out []string
	for _, part := range strings.Split(f.str(name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (f *requestFields) date(zone timeutil.Zone, name string) (*time.Time, error) {
	return parseDate(zone, f.str(name), name)
}

func queryPtr(c *fiber.Ctx, name string) *string {
	if v := strings.TrimSpace(c.Query(name)); v != "" {
		return &v
	}
	return nil
}

func queryDate(c *fiber.Ctx, zone timeutil.Zone, name string) (*time.Time, error) {
	return parseDate(zone, c.Query(name), name)
}

func parseDate(zone timeutil.Zone, value, name string) (*time.Time, error) {
	t, err := zone.ParseOptional(value)
	if err != nil {
		return nil, apperrors.NewInvalidField(name, "must be an RFC3339 timestamp or YYYY-MM-DD date")
	}
	return t, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// uploadBatch saves the media parts of one request and remembers what it
// wrote so a failed request leaves nothing behind.
type uploadBatch struct {
	uploads    Uploads
	c          *fiber.Ctx
	voiceField string

	mu    sync.Mutex
	saved []string
}

// begin starts a batch reading the voice slot from voiceField and the video
// and image slots from "video" and "image".
func (u Uploads) begin(c *fiber.Ctx, voiceField string) *uploadBatch {
	return &uploadBatch{uploads: u, c: c, voiceField: voiceField}
}

// saver returns nil when the request carries no files.
func (b *uploadBatch) saver() service.MediaSaver {
	if b.uploads.Store == nil || !isMultipart(b.c) {
		return nil
	}
	return func(ctx context.Context) (domain.MediaRefs, error) {
		var refs domain.MediaRefs
		slots := []struct {
			field string
			dst   **string
		}{
			{b.voiceField, &refs.VoiceNoteURL},
			{"video", &refs.VideoURL},
			{"image", &refs.ImageURL},
		}
		for _, slot := range slots {
			fh, err := b.c.FormFile(slot.field)
			if err != nil {
				continue
			}
			if limit := b.uploads.MaxBytes; limit > 0 && fh.Size > int64(limit) {
				b.discard(ctx)
				return domain.MediaRefs{}, apperrors.NewInvalidField(slot.field, "file exceeds the upload limit")
			}
			url, err := b.save(ctx, fh)
			if err != nil {
				b.discard(ctx)
				return domain.MediaRefs{}, apperrors.NewInternalError(err)
			}
			*slot.dst = &url
		}
		return refs, nil
	}
}

func (b *uploadBatch) save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	url, err := b.uploads.Store.Save(ctx, fh.Filename, f)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	b.saved = append(b.saved, url)
	b.mu.Unlock()
	return url, nil
}

// discard deletes every blob saved so far. Handlers call it when the request
// fails after the saver ran.
func (b *uploadBatch) discard(ctx context.Context) {
	b.mu.Lock()
	saved := b.saved
	b.saved = nil
	b.mu.Unlock()
	for _, url := range saved {
		if err := b.uploads.Store.Delete(ctx, url); err != nil {
			b.uploads.logger().Warn("orphaned upload not removed", zap.String("url", url), zap.Error(err))
		}
	}
}
