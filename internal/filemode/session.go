package filemode

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"video-analytics/internal/apperrors"
	"video-analytics/internal/models"
	"video-analytics/shared/storage"
)

// Session holds the active document. Load and Clear swap the pointer, so a
// question in flight keeps answering from the document it started with.
type Session struct {
	current  atomic.Pointer[models.Document]
	resolver *Resolver
	cache    *storage.DocumentCache
	logger   *zap.Logger
}

// NewSession creates an empty session. cache may be nil to disable the
// on-disk copy.
func NewSession(resolver *Resolver, cache *storage.DocumentCache, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		resolver: resolver,
		cache:    cache,
		logger:   logger,
	}
}

// Current returns the active document or nil.
func (s *Session) Current() *models.Document {
	return s.current.Load()
}

// Active reports whether a document is loaded.
func (s *Session) Active() bool {
	return s.current.Load() != nil
}

// LoadFile reads, validates and activates the document at path.
func (s *Session) LoadFile(path string) (*models.Document, error) {
	doc, data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.activate(doc, data)
	return doc, nil
}

// LoadBytes validates and activates an uploaded document.
func (s *Session) LoadBytes(name string, data []byte) (*models.Document, error) {
	doc, err := Parse(name, data)
	if err != nil {
		return nil, err
	}
	s.activate(doc, data)
	return doc, nil
}

func (s *Session) activate(doc *models.Document, data []byte) {
	s.current.Store(doc)
	s.logger.Info("document loaded",
		zap.String("name", doc.Name),
		zap.String("hash", doc.Hash),
		zap.Int("videos", len(doc.Videos)))

	if s.cache == nil {
		return
	}
	if rec, err := s.cache.Save(doc.Name, data); err != nil {
		s.logger.Warn("failed to cache document", zap.String("name", doc.Name), zap.Error(err))
	} else {
		s.logger.Debug("document cached", zap.String("path", rec.FilePath))
	}
}

// Restore activates the cached document, if any. It reports whether a
// document was restored. Cache problems are logged and leave the session
// empty.
func (s *Session) Restore() bool {
	if s.cache == nil {
		return false
	}
	rec, data, err := s.cache.Read()
	if err != nil {
		s.logger.Warn("failed to read document cache", zap.Error(err))
		return false
	}
	if rec == nil {
		return false
	}

	doc, err := Parse(rec.FileName, data)
	if err != nil {
		s.logger.Warn("cached document is invalid, clearing cache", zap.String("file", rec.CacheFileName), zap.Error(err))
		if err := s.cache.Clear(); err != nil {
			s.logger.Warn("failed to clear document cache", zap.Error(err))
		}
		return false
	}

	s.current.Store(doc)
	s.logger.Info("document restored from cache",
		zap.String("name", doc.Name),
		zap.Time("cached_at", rec.CachedAt),
		zap.Int("videos", len(doc.Videos)))
	return true
}

// Clear drops the active document and its cached copy. It reports whether a
// document was loaded.
func (s *Session) Clear() bool {
	prev := s.current.Swap(nil)
	if s.cache != nil {
		if err := s.cache.Clear(); err != nil {
			s.logger.Warn("failed to clear document cache", zap.Error(err))
		}
	}
	if prev != nil {
		s.logger.Info("document cleared", zap.String("name", prev.Name))
	}
	return prev != nil
}

// Answer resolves question from the active document.
func (s *Session) Answer(ctx context.Context, question string) (Answer, error) {
	doc := s.current.Load()
	if doc == nil {
		return Answer{}, apperrors.New(apperrors.ErrNoData, "no document loaded")
	}
	return s.resolver.Answer(ctx, doc, question)
}
