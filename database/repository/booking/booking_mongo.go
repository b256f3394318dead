package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"rentx/database"
	"rentx/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// occupyingStatuses block a car's date range from other bookings.
var occupyingStatuses = []models.BookingStatus{models.BookingConfirmed, models.BookingPending}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll  *mongo.Collection
	locks *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	db := database.MongoClient.Database(database.DatabaseName)
	repo := &MongoBookingRepo{
		coll:  db.Collection("bookings"),
		locks: db.Collection("booking_locks"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries, and
// the TTL index that expires stale car locks.
func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "bookingDate", Value: -1}}},
		{Keys: bson.D{{Key: "carId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "startDate", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "endDate", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "refundStatus", Value: 1}, {Key: "cancellationDate", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	lockTTL := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	if _, err := r.locks.Indexes().CreateOne(ctx, lockTTL); err != nil {
		return fmt.Errorf("failed to create lock TTL index: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Update(ctx context.Context, b *models.Booking) error {
	b.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": b.ID}, b)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("booking %s not found for update", b.ID)
	}
	return nil
}

// UpdateWithStatus is a compare-and-swap on the status axis: the document
// is replaced only if its stored status still equals expected, so a user
// transition racing a scheduler transition loses cleanly instead of
// clobbering.
func (r *MongoBookingRepo) UpdateWithStatus(ctx context.Context, b *models.Booking, expected models.BookingStatus) error {
	b.UpdatedAt = time.Now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": b.ID, "status": expected}, b)
	if err != nil {
		return fmt.Errorf("failed to update booking %s: %w", b.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *MongoBookingRepo) FindConflicting(ctx context.Context, carID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	filter := bson.M{
		"carId":     carID,
		"status":    bson.M{"$in": occupyingStatuses},
		"startDate": bson.M{"$lt": end},
		"endDate":   bson.M{"$gt": start},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}
	return r.findAll(ctx, filter, nil)
}

func (r *MongoBookingRepo) FindByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "bookingDate", Value: -1}})
	return r.findAll(ctx, bson.M{"userId": userID}, opts)
}

func (r *MongoBookingRepo) FindByUserAndStatus(ctx context.Context, userID string, status models.BookingStatus) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "bookingDate", Value: -1}})
	return r.findAll(ctx, bson.M{"userId": userID, "status": status}, opts)
}

func (r *MongoBookingRepo) FindByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	return r.findAll(ctx, bson.M{"status": status}, nil)
}

func (r *MongoBookingRepo) FindByStatusAndStartBefore(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error) {
	return r.findAll(ctx, bson.M{"status": status, "startDate": bson.M{"$lt": cutoff}}, nil)
}

func (r *MongoBookingRepo) FindByStatusAndEndBefore(ctx context.Context, status models.BookingStatus, cutoff time.Time) ([]models.Booking, error) {
	return r.findAll(ctx, bson.M{"status": status, "endDate": bson.M{"$lt": cutoff}}, nil)
}

func (r *MongoBookingRepo) FindStartingBetween(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":    models.BookingConfirmed,
		"startDate": bson.M{"$gte": from, "$lte": to},
	}
	return r.findAll(ctx, filter, nil)
}

func (r *MongoBookingRepo) FindUnpaidOnlineBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":        models.BookingConfirmed,
		"paymentMethod": models.PayNow,
		"paymentStatus": models.PaymentPending,
		"bookingDate":   bson.M{"$lt": cutoff},
	}
	return r.findAll(ctx, filter, nil)
}

func (r *MongoBookingRepo) FindNoShowPickupsBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":        models.BookingConfirmed,
		"paymentMethod": models.PayAtPickup,
		"startDate":     bson.M{"$lt": cutoff},
	}
	return r.findAll(ctx, filter, nil)
}

func (r *MongoBookingRepo) FindPendingRefundsBefore(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"status":           models.BookingCancelled,
		"refundStatus":     models.RefundPending,
		"cancellationDate": bson.M{"$lt": cutoff},
	}
	return r.findAll(ctx, filter, nil)
}

func (r *MongoBookingRepo) CountByUserAndStatus(ctx context.Context, userID string, status models.BookingStatus) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID, "status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func (r *MongoBookingRepo) CountByStatus(ctx context.Context, status models.BookingStatus) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func (r *MongoBookingRepo) SumRefundAmountByStatus(ctx context.Context, status models.RefundStatus) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"refundStatus": status}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$refundAmount"}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to sum refund amounts: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode refund sum: %w", err)
		}
	}
	return result.Total, nil
}

func (r *MongoBookingRepo) findAll(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.coll.Find(ctx, filter, opts)
	} else {
		cursor, err = r.coll.Find(ctx, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	for cursor.Next(ctx) {
		var b models.Booking
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("failed to decode booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}
