package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/imelnik/peerview/internal/domain"
)

type roomDoc struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty"`
	Name            string              `bson:"name"`
	Interviewer     primitive.ObjectID  `bson:"interviewer"`
	Candidate       *primitive.ObjectID `bson:"candidate,omitempty"`
	CandidateEmail  string              `bson:"candidateEmail,omitempty"`
	InvitationToken string              `bson:"invitationToken,omitempty"`
	Task            string              `bson:"task"`
	Status          string              `bson:"status"`
	CreatedAt       time.Time           `bson:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt"`
}

func (d *roomDoc) toDomain() *domain.Room {
	r := &domain.Room{
		ID:              domain.RoomID(d.ID.Hex()),
		Name:            d.Name,
		Interviewer:     domain.UserID(d.Interviewer.Hex()),
		CandidateEmail:  d.CandidateEmail,
		InvitationToken: d.InvitationToken,
		Task:            d.Task,
		Status:          domain.RoomStatus(d.Status),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.Candidate != nil {
		r.Candidate = domain.UserID(d.Candidate.Hex())
	}
	return r
}

func roomToDoc(r *domain.Room) (roomDoc, error) {
	interviewer, err := parseObjectID(string(r.Interviewer))
	if err != nil {
		return roomDoc{}, err
	}
	doc := roomDoc{
		Name:            r.Name,
		Interviewer:     interviewer,
		CandidateEmail:  r.CandidateEmail,
		InvitationToken: r.InvitationToken,
		Task:            r.Task,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if r.Candidate != "" {
		cand, err := parseObjectID(string(r.Candidate))
		if err != nil {
			return roomDoc{}, err
		}
		doc.Candidate = &cand
	}
	return doc, nil
}

type mongoRooms struct {
	col *mongo.Collection
}

func (s *mongoRooms) Create(ctx context.Context, r *domain.Room) error {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
	doc, err := roomToDoc(r)
	if err != nil {
		return err
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert room: %w", err)
	}
	r.ID = domain.RoomID(res.InsertedID.(primitive.ObjectID).Hex())
	return nil
}

func (s *mongoRooms) FindByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	oid, err := parseObjectID(string(id))
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

func (s *mongoRooms) FindByInviteToken(ctx context.Context, token string) (*domain.Room, error) {
	return s.findOne(ctx, bson.M{"invitationToken": token})
}

func (s *mongoRooms) findOne(ctx context.Context, filter bson.M) (*domain.Room, error) {
	var doc roomDoc
	err := s.col.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find room: %w", err)
	}
	return doc.toDomain(), nil
}

func (s *mongoRooms) ListByInterviewer(ctx context.Context, id domain.UserID) ([]domain.Room, error) {
	oid, err := parseObjectID(string(id))
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"interviewer": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.Room
	for cur.Next(ctx) {
		var doc roomDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode room: %w", err)
		}
		out = append(out, *doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}
	return out, nil
}

func (s *mongoRooms) Update(ctx context.Context, r *domain.Room) error {
	oid, err := parseObjectID(string(r.ID))
	if err != nil {
		return err
	}
	r.UpdatedAt = time.Now().UTC()
	doc, err := roomToDoc(r)
	if err != nil {
		return err
	}
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *mongoRooms) Delete(ctx context.Context, id domain.RoomID) error {
	oid, err := parseObjectID(string(id))
	if err != nil {
		return err
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
