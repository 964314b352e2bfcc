// Package contacts is the address-book-side service layer, the structural
// twin of package calendar: same cache/retry composition, vCard codec
// underneath.
package contacts

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/mo"

	"davsync/cache"
	"davsync/codec"
	"davsync/davclient"
	"davsync/record"
	"davsync/retry"
)

// Config assembles a Service.
type Config struct {
	Client        davclient.Client
	CollectionURL string
	Logger        *slog.Logger
	Retry         retry.Config
	Cache         cache.Config
}

// Service exposes contact operations to the tool layer.
type Service struct {
	client     davclient.Client
	collection string
	store      *cache.Store[record.Contact]
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
		store:      cache.New[record.Contact](cfg.Cache),
		parser:     codec.NewParser(logger),
		logger:     logger,
		retryCfg:   cfg.Retry,
	}, nil
}

// FetchAll returns every contact in the address book ("" means the
// configured default), served from cache while the change token matches.
func (s *Service) FetchAll(collectionURL string) ([]record.Contact, error) {
	coll := s.resolveCollection(collectionURL)

	ctag, err := retry.Do(s.logger, s.retryCfg, "contacts ctag", davclient.IsTransient, func() (string, error) {
		return s.client.CollectionCTag(coll)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to check address book state: %w", err)
	}

	if !s.store.IsDirty(coll, ctag) {
		if contacts, ok := s.store.Get(coll); ok {
			s.logger.Debug("serving address book from cache", "collection", coll, "contacts", len(contacts))
			return contacts, nil
		}
	}

	objects, err := retry.Do(s.logger, s.retryCfg, "contacts fetch", davclient.IsTransient, func() ([]davclient.RawObject, error) {
		return s.client.FetchObjects(coll)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch address book objects: %w", err)
	}

	contacts := make([]record.Contact, 0, len(objects))
	for _, obj := range objects {
		if c, ok := s.parser.Contact(obj.Data, obj.URL, obj.ETag).Get(); ok {
			contacts = append(contacts, c)
		}
	}

	s.store.Put(coll, ctag, contacts)
	return contacts, nil
}

// FindByUID linearly scans the collection for the contact with the given
// stable identifier.
func (s *Service) FindByUID(uid, collectionURL string) (mo.Option[record.Contact], error) {
	contacts, err := s.FetchAll(collectionURL)
	if err != nil {
		return mo.None[record.Contact](), err
	}
	for _, c := range contacts {
		if c.UID == uid {
			return mo.Some(c), nil
		}
	}
	return mo.None[record.Contact](), nil
}

// Create stores a new contact under a fresh name, demanding absence of the
// target.
func (s *Service) Create(input record.CreateContactInput) (record.WriteResult, error) {
	raw, uid, err := codec.BuildContact(input)
	if err != nil {
		return record.WriteResult{}, fmt.Errorf("failed to build contact: %w", err)
	}

	type created struct{ url, etag string }
	res, err := retry.Do(s.logger, s.retryCfg, "contacts create", davclient.IsTransient, func() (created, error) {
		url, etag, err := s.client.CreateObject(s.collection, raw)
		return created{url, etag}, err
	})
	if err != nil {
		if davclient.IsPreconditionFailed(err) {
			return record.WriteResult{}, &davclient.ConflictError{Resource: "contact", URL: s.collection}
		}
		return record.WriteResult{}, fmt.Errorf("failed to create contact: %w", err)
	}

	s.store.Invalidate(s.collection)
	s.logger.Debug("created contact", "uid", uid, "url", res.url)
	return record.WriteResult{URL: res.url, ETag: res.etag}, nil
}

// Update patches the named fields onto a freshly fetched copy of the card,
// guarded by the caller's previously-read etag.
func (s *Service) Update(objectURL, etag string, input record.UpdateContactInput) (record.WriteResult, error) {
	if etag == "" {
		return record.WriteResult{}, fmt.Errorf("updating a contact requires its previously-read etag")
	}

	current, err := retry.Do(s.logger, s.retryCfg, "contacts read", davclient.IsTransient, func() (davclient.RawObject, error) {
		return s.client.GetObject(objectURL)
	})
	if err != nil {
		return record.WriteResult{}, fmt.Errorf("failed to fetch contact for update: %w", err)
	}

	patched, err := codec.PatchContact(current.Data, input)
	if err != nil {
		return record.WriteResult{}, fmt.Errorf("failed to patch contact: %w", err)
	}

	newEtag, err := retry.Do(s.logger, s.retryCfg, "contacts update", davclient.IsTransient, func() (string, error) {
		return s.client.UpdateObject(objectURL, etag, patched)
	})
	if err != nil {
		if davclient.IsPreconditionFailed(err) {
			return record.WriteResult{}, &davclient.ConflictError{Resource: "contact", URL: objectURL}
		}
		return record.WriteResult{}, fmt.Errorf("failed to update contact: %w", err)
	}

	s.store.Invalidate(collectionOf(objectURL))
	return record.WriteResult{URL: objectURL, ETag: newEtag}, nil
}

// Delete removes a contact, fetching a fresh etag first when the caller has
// none.
func (s *Service) Delete(objectURL, etag string) error {
	if etag == "" {
		fresh, err := retry.Do(s.logger, s.retryCfg, "contacts etag", davclient.IsTransient, func() (string, error) {
			return s.client.ObjectETag(objectURL)
		})
		if err != nil {
			return fmt.Errorf("failed to fetch etag for delete: %w", err)
		}
		etag = fresh
	}

	_, err := retry.Do(s.logger, s.retryCfg, "contacts delete", davclient.IsTransient, func() (struct{}, error) {
		return struct{}{}, s.client.DeleteObject(objectURL, etag)
	})
	if err != nil {
		if davclient.IsPreconditionFailed(err) {
			return &davclient.ConflictError{Resource: "contact", URL: objectURL}
		}
		return fmt.Errorf("failed to delete contact: %w", err)
	}

	s.store.Invalidate(collectionOf(objectURL))
	return nil
}

func (s *Service) resolveCollection(collectionURL string) string {
	if collectionURL == "" {
		return s.collection
	}
	return normalizeCollection(collectionURL)
}

func normalizeCollection(collectionURL string) string {
	if !strings.HasSuffix(collectionURL, "/") {
		return collectionURL + "/"
	}
	return collectionURL
}

func collectionOf(objectURL string) string {
	idx := strings.LastIndex(objectURL, "/")
	if idx < 0 {
		return objectURL
	}
	return objectURL[:idx+1]
}
