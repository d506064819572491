package repository

import (
	"context"
	"errors"
	"time"

	"github.com/josswuzhur/cloud-notes-app/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoteNotFound reports an update or read against an id that does not
// exist. Delete deliberately never returns it.
var ErrNoteNotFound = errors.New("note not found")

type NotesRepo struct {
	MongoCollection *mongo.Collection
}

func NewNotesRepo(client *mongo.Client, database string) *NotesRepo {
	return &NotesRepo{
		MongoCollection: client.Database(database).Collection("notes"),
	}
}

// CreateNote inserts a new note, assigning its id and timestamps.
func (r *NotesRepo) CreateNote(ctx context.Context, note *model.Note) error {
	if note.UserID == "" {
		return errors.New("user ID is required")
	}

	note.ID = uuid.New().String()
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.MongoCollection.InsertOne(ctx, note)
	return err
}

// GetNote retrieves a specific note
func (r *NotesRepo) GetNote(ctx context.Context, noteID string, userID string) (*model.Note, error) {
	var note model.Note
	err := r.MongoCollection.FindOne(ctx,
		bson.M{"_id": noteID, "user_id": userID}).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

// UpdateNoteText replaces the text of an existing note and returns the
// updated document. Only text mutates; id and creation instant never change.
func (r *NotesRepo) UpdateNoteText(ctx context.Context, noteID string, userID string, text string) (*model.Note, error) {
	filter := bson.M{
		"_id":     noteID,
		"user_id": userID,
	}

	update := bson.M{
		"$set": bson.M{
			"text":       text,
			"updated_at": time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var note model.Note
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a note if it exists. A missing id is not an error, so
// the transport stays idempotent.
func (r *NotesRepo) DeleteNote(ctx context.Context, noteID string, userID string) error {
	_, err := r.MongoCollection.DeleteOne(ctx, bson.M{
		"_id":     noteID,
		"user_id": userID,
	})
	return err
}

// ListNotes retrieves the full collection for a user, newest first.
func (r *NotesRepo) ListNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.MongoCollection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	notes := []*model.Note{}
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CountUserNotes counts the number of notes for a user
func (r *NotesRepo) CountUserNotes(ctx context.Context, userID string) (int, error) {
	count, err := r.MongoCollection.CountDocuments(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// Snapshot is the live-query read: the complete ordered collection at one
// point in time.
func (r *NotesRepo) Snapshot(ctx context.Context, userID string) ([]*model.Note, error) {
	return r.ListNotes(ctx, userID)
}

// Watch opens a change stream over the notes collection. The returned stream
// fires once per insert, update, replace or delete; the caller owns closing
// it. *mongo.ChangeStream satisfies stream.Feed directly.
func (r *NotesRepo) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": []string{"insert", "update", "replace", "delete"}},
		}}},
	}
	return r.MongoCollection.Watch(ctx, pipeline)
}
