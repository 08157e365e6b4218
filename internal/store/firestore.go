package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slot-booking-api/internal/timefmt"
)

// Firestore keeps registrations in one collection. Each insert also creates
// a lock document named after the slot in <collection>_slots inside the same
// transaction, so two writers racing for one slot cannot both commit.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// OpenFirestore initializes a Firebase app for projectID and returns a store
// on its Firestore client. credentialsFile may be empty to use ambient
// credentials or the emulator (FIRESTORE_EMULATOR_HOST).
func OpenFirestore(ctx context.Context, projectID, credentialsFile, collection string) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return NewFirestore(client, collection), nil
}

func NewFirestore(client *firestore.Client, collection string) *Firestore {
	if collection == "" {
		collection = "registrations"
	}
	return &Firestore{client: client, collection: collection}
}

func (s *Firestore) Close() error { return s.client.Close() }

func (s *Firestore) Insert(ctx context.Context, rec Record) (string, error) {
	ref := s.client.Collection(s.collection).NewDoc()
	lock := s.client.Collection(s.collection + "_slots").Doc(slotKey(rec.Date, rec.TimeSlot))

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if err := tx.Create(lock, map[string]any{"registrationId": ref.ID}); err != nil {
			return err
		}
		return tx.Create(ref, map[string]any{
			"name":       rec.Name,
			"department": rec.Department,
			"extension":  rec.Extension,
			"date":       rec.Date,
			"timeSlot":   rec.TimeSlot,
			"createdAt":  rec.CreatedAt,
		})
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return "", ErrSlotTaken
		}
		return "", err
	}
	return ref.ID, nil
}

func (s *Firestore) All(ctx context.Context) ([]Record, error) {
	docs, err := s.client.Collection(s.collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return fromDocs(docs), nil
}

func (s *Firestore) Watch(ctx context.Context, emit func([]Record)) error {
	it := s.client.Collection(s.collection).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			if ctx.Err() != nil || status.Code(err) == codes.Canceled {
				return nil
			}
			return err
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		emit(fromDocs(docs))
	}
}

func fromDocs(docs []*firestore.DocumentSnapshot) []Record {
	out := make([]Record, 0, len(docs))
	for _, d := range docs {
		data := d.Data()
		out = append(out, Record{
			ID:         d.Ref.ID,
			Name:       text(data["name"]),
			Department: text(data["department"]),
			Extension:  text(data["extension"]),
			Date:       text(data["date"]),
			TimeSlot:   text(data["timeSlot"]),
			CreatedAt:  millis(data["createdAt"]),
		})
	}
	return out
}

// slotKey names the lock document for a slot; both parts are canonical so
// "2025/1/22 8:0" and "2025-01-22 08:00" share one lock.
func slotKey(date, slot string) string {
	return timefmt.NormalizeDate(date) + "_" + timefmt.NormalizeTime(slot)
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// millis reads createdAt whether it was written as an integer, a double or
// a Firestore timestamp.
func millis(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case float64:
		return int64(t)
	case time.Time:
		return t.UnixMilli()
	default:
		return 0
	}
}
