package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/credkit/credkit"
)

var (
	// ErrStoreUnavailable wraps Redis transport failures.
	ErrStoreUnavailable = errors.New("principal store unavailable")
	// ErrUnknownField is returned for a lookup on a field the store does not
	// index.
	ErrUnknownField = errors.New("unknown lookup field")
	// ErrUnsupportedRecord is returned when Save is given a record type this
	// store did not produce.
	ErrUnsupportedRecord = errors.New("record type not supported by this store")
)

// RedisStore persists [Principal] records in Redis. It implements the
// engine's Store and OptionsStore interfaces.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	fields credkit.FieldConfig
}

// NewRedisStore builds a store over the given client. The field config must
// be the same one the engine is built with, since lookups are validated
// against its identifier field names.
func NewRedisStore(redisClient redis.UniversalClient, prefix string, fields credkit.FieldConfig) *RedisStore {
	if prefix == "" {
		prefix = "ck"
	}
	return &RedisStore{
		redis:  redisClient,
		prefix: prefix,
		fields: fields,
	}
}

func (s *RedisStore) recordKey(id string) string {
	return s.prefix + ":rec:" + id
}

func (s *RedisStore) indexKey(field, value string) string {
	return s.prefix + ":idx:" + field + ":" + value
}

func (s *RedisStore) relationKey(id, field string) string {
	return s.prefix + ":rel:" + id + ":" + field
}

// FindOne resolves an identifier through its index key, then loads the
// record blob. Only the two configured identifier fields are indexed.
func (s *RedisStore) FindOne(ctx context.Context, field, value string) (credkit.Credential, error) {
	p, err := s.findPrincipal(ctx, field, value)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindOneWithOptions applies select and populate hints on top of FindOne.
// Select filters the record's attribute map; populate loads related values
// stored under per-record relation keys into the attribute map.
func (s *RedisStore) FindOneWithOptions(ctx context.Context, field, value string, opts credkit.QueryOptions) (credkit.Credential, error) {
	p, err := s.findPrincipal(ctx, field, value)
	if err != nil {
		return nil, err
	}

	if len(opts.SelectFields) > 0 && len(p.Attributes) > 0 {
		selected := make(map[string]string, len(opts.SelectFields))
		for _, name := range opts.SelectFields {
			if v, ok := p.Attributes[name]; ok {
				selected[name] = v
			}
		}
		p.Attributes = selected
	}

	for _, name := range opts.PopulateFields {
		v, err := s.redis.Get(ctx, s.relationKey(p.ID, name)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if p.Attributes == nil {
			p.Attributes = make(map[string]string, len(opts.PopulateFields))
		}
		p.Attributes[name] = v
	}

	return p, nil
}

func (s *RedisStore) findPrincipal(ctx context.Context, field, value string) (*Principal, error) {
	if field != s.fields.IdentifierField && field != s.fields.SecondaryIdentifierField {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	id, err := s.redis.Get(ctx, s.indexKey(field, value)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, credkit.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	data, err := s.redis.Get(ctx, s.recordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		// Dangling index entry; treat as absent.
		return nil, credkit.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var p Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("corrupt principal record %s: %w", id, err)
	}
	return &p, nil
}

// Save writes the record blob and both identifier index keys in one
// transaction, dropping index keys a renamed identifier leaves behind. A
// record without an ID is assigned one.
func (s *RedisStore) Save(ctx context.Context, record credkit.Credential) error {
	p, ok := record.(*Principal)
	if !ok {
		return ErrUnsupportedRecord
	}

	var prev *Principal
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else {
		data, err := s.redis.Get(ctx, s.recordKey(p.ID)).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// first write under a caller-chosen ID
		case err != nil:
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		default:
			var stored Principal
			if jsonErr := json.Unmarshal(data, &stored); jsonErr == nil {
				prev = &stored
			}
		}
	}

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.recordKey(p.ID), data, 0)
		if prev != nil && prev.Username != "" && prev.Username != p.Username {
			pipe.Del(ctx, s.indexKey(s.fields.IdentifierField, prev.Username))
		}
		if prev != nil && prev.Email != "" && prev.Email != p.Email {
			pipe.Del(ctx, s.indexKey(s.fields.SecondaryIdentifierField, prev.Email))
		}
		if p.Username != "" {
			pipe.Set(ctx, s.indexKey(s.fields.IdentifierField, p.Username), p.ID, 0)
		}
		if p.Email != "" {
			pipe.Set(ctx, s.indexKey(s.fields.SecondaryIdentifierField, p.Email), p.ID, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SetRelation stores a related value for later retrieval through the
// populate hint.
func (s *RedisStore) SetRelation(ctx context.Context, record credkit.Credential, field, value string) error {
	p, ok := record.(*Principal)
	if !ok {
		return ErrUnsupportedRecord
	}
	if p.ID == "" {
		return errors.New("record has no ID, save it first")
	}
	if err := s.redis.Set(ctx, s.relationKey(p.ID, field), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
