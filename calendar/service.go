// Package calendar is the event-side service layer: it composes the remote
// client, the retry wrapper, the collection cache and the codec into
// create/update/delete/find operations with etag concurrency control.
package calendar

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/mo"

	"davsync/cache"
	"davsync/codec"
	"davsync/davclient"
	"davsync/record"
	"davsync/recurrence"
	"davsync/retry"
)

// Config assembles a Service.
type Config struct {
	Client        davclient.Client
	CollectionURL string // default collection for calls that do not name one
	Logger        *slog.Logger
	Retry         retry.Config
	Cache         cache.Config
}

// Service exposes calendar operations to the tool layer. It is the only
// component that talks to the network; use one instance per remote account
// and per process.
type Service struct {
	client     davclient.Client
	collection string
	store      *cache.Store[record.Event]
	parser     *codec.Parser
	logger     *slog.Logger
	retryCfg   retry.Config
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("remote client is required")
	}
	if cfg.CollectionURL == "" {
		return nil, fmt.Errorf("collection URL is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:     cfg.Client,
		collection: normalizeCollection(cfg.CollectionURL),
		store:      cache.New[record.Event](cfg.Cache),
		parser:     codec.NewParser(logger),
		logger:     logger,
		retryCfg:   cfg.Retry,
	}, nil
}

// FetchAll returns every event in the collection ("" means the configured
// default), served from cache while the server's change token matches.
// Malformed objects are skipped, so the result may be shorter than the
// collection.
func (s *Service) FetchAll(collectionURL string) ([]record.Event, error) {
	coll := s.resolveCollection(collectionURL)

	ctag, err := retry.Do(s.logger, s.retryCfg, "calendar ctag", davclient.IsTransient, func() (string, error) {
		return s.client.CollectionCTag(coll)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check calendar state: %w", err)
	}

	if !s.store.IsDirty(coll, ctag) {
		if events, ok := s.store.Get(coll); ok {
			s.logger.Debug("serving calendar from cache", "collection", coll, "events", len(events))
			return events, nil
		}
	}

	objects, err := retry.Do(s.logger, s.retryCfg, "calendar fetch", davclient.IsTransient, func() ([]davclient.RawObject, error) {
		return s.client.FetchObjects(coll)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar objects: %w", err)
	}

	events := make([]record.Event, 0, len(objects))
	for _, obj := range objects {
		if ev, ok := s.parser.Event(obj.Data, obj.URL, obj.ETag).Get(); ok {
			events = append(events, ev)
		}
	}

	s.store.Put(coll, ctag, events)
	return events, nil
}

// FindByUID scans the collection for the event with the given stable
// identifier. The protocol offers no server-side identifier search, so this
// is a linear scan over the (cached) collection; fine at personal-calendar
// scale.
func (s *Service) FindByUID(uid, collectionURL string) (mo.Option[record.Event], error) {
	events, err := s.FetchAll(collectionURL)
	if err != nil {
		return mo.None[record.Event](), err
	}
	for _, ev := range events {
		if ev.UID == uid {
			return mo.Some(ev), nil
		}
	}
	return mo.None[record.Event](), nil
}

// Create stores a new event in the default collection. The write demands
// absence of the target, so two clients picking the same name cannot
// silently overwrite each other.
func (s *Service) Create(input record.CreateEventInput) (record.WriteResult, error) {
	raw, uid, err := codec.BuildEvent(input)
	if err != nil {
		return record.WriteResult{}, fmt.Errorf("failed to build event: %w", err)
	}

	type created struct{ url, etag string }
	res, err := retry.Do(s.logger, s.retryCfg, "calendar create", davclient.IsTransient, func() (created, error) {
		url, etag, err := s.client.CreateObject(s.collection, raw)
		return created{url, etag}, err
	})
	if err != nil {
		if davclient.IsPreconditionFailed(err) {
			return record.WriteResult{}, &davclient.ConflictError{Resource: "event", URL: s.collection}
		}
		return record.WriteResult{}, fmt.Errorf("failed to create event: %w", err)
	}

	s.store.Invalidate(s.collection)
	s.logger.Debug("created event", "uid", uid, "url", res.url)
	return record.WriteResult{URL: res.url, ETag: res.etag}, nil
}

// Update patches only the fields the input names onto the stored object,
// using the caller's previously-read etag as precondition. The object's raw
// text is re-fetched first; the patch is never applied to a stale copy held
// by the caller.
func (s *Service) Update(objectURL, etag string, input record.UpdateEventInput) (record.WriteResult, error) {
	if etag == "" {
		return record.WriteResult{}, fmt.Errorf("updating an event requires its previously-read etag")
	}

	current, err := retry.Do(s.logger, s.retryCfg, "calendar read", davclient.IsTransient, func() (davclient.RawObject, error) {
		return s.client.GetObject(objectURL)
	})
	if err != nil {
		return record.WriteResult{}, fmt.Errorf("failed to fetch event for update: %w", err)
	}

	patched, err := codec.PatchEvent(current.Data, input)
	if err != nil {
		return record.WriteResult{}, fmt.Errorf("failed to patch event: %w", err)
	}

	newEtag, err := retry.Do(s.logger, s.retryCfg, "calendar update", davclient.IsTransient, func() (string, error) {
		return s.client.UpdateObject(objectURL, etag, patched)
	})
	if err != nil {
		if davclient.IsPreconditionFailed(err) {
			return record.WriteResult{}, &davclient.ConflictError{Resource: "event", URL: objectURL}
		}
		return record.WriteResult{}, fmt.Errorf("failed to update event: %w", err)
	}

	s.store.Invalidate(collectionOf(objectURL))
	return record.WriteResult{URL: objectURL, ETag: newEtag}, nil
}

// Delete removes an event. A caller that lost the etag gets a fresh one
// fetched on its behalf; deletion should not fail just because the tag was
// not carried forward.
func (s *Service) Delete(objectURL, etag string) error {
	if etag == "" {
		fresh, err := retry.Do(s.logger, s.retryCfg, "calendar etag", davclient.IsTransient, func() (string, error) {
			return s.client.ObjectETag(objectURL)
		})
		if err != nil {
			return fmt.Errorf("failed to fetch etag for delete: %w", err)
		}
		etag = fresh
	}

	_, err := retry.Do(s.logger, s.retryCfg, "calendar delete", davclient.IsTransient, func() (struct{}, error) {
		return struct{}{}, s.client.DeleteObject(objectURL, etag)
	})
	if err != nil {
		if davclient.IsPreconditionFailed(err) {
			return &davclient.ConflictError{Resource: "event", URL: objectURL}
		}
		return fmt.Errorf("failed to delete event: %w", err)
	}

	s.store.Invalidate(collectionOf(objectURL))
	return nil
}

// ExpandRecurrence expands a recurrence master inside the window.
func (s *Service) ExpandRecurrence(master record.Event, w recurrence.Window) ([]time.Time, error) {
	return recurrence.Expand(master, w)
}

// CreateException overrides one occurrence of a recurring series. The
// master's resource is re-fetched and rewritten to carry a second component
// with the same UID and a RECURRENCE-ID naming the occurrence.
func (s *Service) CreateException(master record.Event, occurrence time.Time, changes record.UpdateEventInput, cloneAlarms bool) (record.WriteResult, error) {
	if master.URL == "" {
		return record.WriteResult{}, fmt.Errorf("master event has no URL")
	}

	current, err := retry.Do(s.logger, s.retryCfg, "calendar read", davclient.IsTransient, func() (davclient.RawObject, error) {
		return s.client.GetObject(master.URL)
	})
	if err != nil {
		return record.WriteResult{}, fmt.Errorf("failed to fetch master for exception: %w", err)
	}

	patched, err := codec.BuildException(current.Data, occurrence, changes, cloneAlarms)
	if err != nil {
		return record.WriteResult{}, fmt.Errorf("failed to build exception: %w", err)
	}

	etag := master.ETag
	if etag == "" {
		etag = current.ETag
	}
	newEtag, err := retry.Do(s.logger, s.retryCfg, "calendar update", davclient.IsTransient, func() (string, error) {
		return s.client.UpdateObject(master.URL, etag, patched)
	})
	if err != nil {
		if davclient.IsPreconditionFailed(err) {
			return record.WriteResult{}, &davclient.ConflictError{Resource: "event", URL: master.URL}
		}
		return record.WriteResult{}, fmt.Errorf("failed to store exception: %w", err)
	}

	s.store.Invalidate(collectionOf(master.URL))
	return record.WriteResult{URL: master.URL, ETag: newEtag}, nil
}

func (s *Service) resolveCollection(collectionURL string) string {
	if collectionURL == "" {
		return s.collection
	}
	return normalizeCollection(collectionURL)
}

// normalizeCollection keeps collection URLs in the trailing-slash form, so
// cache keys derived from object URLs and from configuration agree.
func normalizeCollection(collectionURL string) string {
	if !strings.HasSuffix(collectionURL, "/") {
		return collectionURL + "/"
	}
	return collectionURL
}

// collectionOf derives the containing collection from an object URL.
func collectionOf(objectURL string) string {
	idx := strings.LastIndex(objectURL, "/")
	if idx < 0 {
		return objectURL
	}
	return objectURL[:idx+1]
}
