// README: Embedded request store backed by BoltDB (single file, no server).
package request

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"sort"

	bolt "go.etcd.io/bbolt"

	"campd/internal/types"
)

var (
	requestsBucket = []byte("requests")
	eventsBucket   = []byte("request_events")
)

// BoltStore keeps one JSON document per tracking ID. Bolt serialises write
// transactions, which makes the version check in CompareAndSwap atomic.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(requestsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(eventsBucket)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

// Create writes the request; an existing row with the same tracking ID is replaced.
func (s *BoltStore) Create(_ context.Context, r *DeliveryRequest) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(requestsBucket).Put([]byte(r.TrackingID), data)
	})
}

func (s *BoltStore) Get(_ context.Context, id types.ID) (*DeliveryRequest, error) {
	var r DeliveryRequest
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(requestsBucket).Get([]byte(id))
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &r)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *BoltStore) CompareAndSwap(_ context.Context, r *DeliveryRequest, expectedVersion int) (bool, error) {
	swapped := false
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(requestsBucket)
		v := b.Get([]byte(r.TrackingID))
		if v == nil {
			return ErrNotFound
		}
		var current DeliveryRequest
		if err := json.Unmarshal(v, &current); err != nil {
			return err
		}
		if current.StatusVersion != expectedVersion {
			return nil
		}
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(r.TrackingID), data); err != nil {
			return err
		}
		swapped = true
		return nil
	})
	return swapped, err
}

func (s *BoltStore) List(_ context.Context, f ListFilter) ([]*DeliveryRequest, error) {
	var out []*DeliveryRequest
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(requestsBucket).ForEach(func(_, v []byte) error {
			var r DeliveryRequest
			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}
			if f.Match(&r) {
				out = append(out, &r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// AppendEvent stores events under tracking_id + NUL + big-endian sequence so a prefix
// scan returns them in insertion order.
func (s *BoltStore) AppendEvent(_ context.Context, e *Event) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(eventsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		e.ID = int64(seq)
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		return b.Put(eventKey(e.TrackingID, seq), data)
	})
}

func (s *BoltStore) Events(_ context.Context, id types.ID) ([]Event, error) {
	prefix := eventPrefix(id)
	var out []Event
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(eventsBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var e Event
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

func eventPrefix(id types.ID) []byte {
	return append([]byte(id), 0)
}

func eventKey(id types.ID, seq uint64) []byte {
	key := eventPrefix(id)
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], seq)
	return append(key, n[:]...)
}

func sortNewestFirst(rs []*DeliveryRequest) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].CreatedAt.After(rs[j].CreatedAt)
	})
}
