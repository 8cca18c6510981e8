// Package sweep implements the daily batch that warns owners about
// warranties expiring and services falling due exactly seven days out.
package sweep

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"warrantytracker/internal/mailer"
	"warrantytracker/internal/models"
	"warrantytracker/internal/warranty"
)

// Result reports one sweep run. Attempted counts records that passed
// eligibility; Sent counts successful deliveries.
type Result struct {
	Matched   int
	Attempted int
	Sent      int
}

// eligible reports whether the owner can be notified at all.
func eligible(user *models.User) bool {
	return user != nil && user.Email != "" && user.NotificationsEnabled
}

// shouldNotify skips records already warned about for their current
// target date, giving at-most-once delivery per expiry value.
func shouldNotify(notifiedFor *time.Time, target time.Time) bool {
	return notifiedFor == nil || !notifiedFor.Equal(target)
}

func lookupUser(ctx context.Context, db *mongo.Database, id primitive.ObjectID, cache map[primitive.ObjectID]*models.User) *models.User {
	if user, ok := cache[id]; ok {
		return user
	}

	var user models.User
	err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			zap.S().Errorf("sweep: user lookup %s failed: %v", id.Hex(), err)
		}
		cache[id] = nil
		return nil
	}
	cache[id] = &user
	return &user
}

// RunWarrantyCheck selects every product, across all owners, whose
// warranty expires on the day exactly seven days ahead of now, and sends
// one warning per eligible owner/product. A failed delivery never aborts
// the run.
func RunWarrantyCheck(ctx context.Context, db *mongo.Database, m mailer.Mailer, now time.Time) (Result, error) {
	start, end := warranty.SweepWindow(now)
	zap.S().Infof("sweep: checking warranties expiring between %s and %s", start.Format(time.RFC3339), end.Format(time.RFC3339))

	cursor, err := db.Collection("products").Find(ctx, bson.M{
		"warrantyExpiryDate": bson.M{"$gte": start, "$lte": end},
	})
	if err != nil {
		return Result{}, err
	}

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return Result{}, err
	}

	result := Result{Matched: len(products)}
	if len(products) == 0 {
		zap.S().Info("sweep: no warranties expiring in exactly 7 days")
		return result, nil
	}

	users := map[primitive.ObjectID]*models.User{}
	for _, product := range products {
		if !shouldNotify(product.WarrantyNotifiedFor, product.WarrantyExpiryDate) {
			continue
		}

		user := lookupUser(ctx, db, product.User, users)
		if !eligible(user) {
			continue
		}

		result.Attempted++
		html := mailer.WarrantyWarningHTML(user.Name, product.Name, warranty.SweepLeadDays)
		if err := m.Send(user.Email, mailer.WarrantyWarningSubject(product.Name), html); err != nil {
			zap.S().Errorf("sweep: warranty warning for product %s failed: %v", product.ID.Hex(), err)
			continue
		}
		result.Sent++

		_, err := db.Collection("products").UpdateOne(
			ctx,
			bson.M{"_id": product.ID},
			bson.M{"$set": bson.M{"warrantyNotifiedFor": product.WarrantyExpiryDate}},
		)
		if err != nil {
			zap.S().Errorf("sweep: could not mark product %s as notified: %v", product.ID.Hex(), err)
		}
	}

	zap.S().Infof("sweep: warranty check done, %d matched, %d attempted, %d sent", result.Matched, result.Attempted, result.Sent)
	return result, nil
}

// RunServiceDueCheck is the service-record counterpart: one reminder per
// service whose next due date falls on the day exactly seven days ahead.
func RunServiceDueCheck(ctx context.Context, db *mongo.Database, m mailer.Mailer, now time.Time) (Result, error) {
	start, end := warranty.SweepWindow(now)

	cursor, err := db.Collection("services").Find(ctx, bson.M{
		"nextServiceDueDate": bson.M{"$gte": start, "$lte": end},
	})
	if err != nil {
		return Result{}, err
	}

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return Result{}, err
	}

	result := Result{Matched: len(services)}
	if len(services) == 0 {
		return result, nil
	}

	users := map[primitive.ObjectID]*models.User{}
	for _, service := range services {
		if service.NextServiceDueDate == nil {
			continue
		}
		if !shouldNotify(service.DueNotifiedFor, *service.NextServiceDueDate) {
			continue
		}

		user := lookupUser(ctx, db, service.User, users)
		if !eligible(user) {
			continue
		}

		productName := "your product"
		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": service.Product}).Decode(&product); err == nil {
			productName = product.Name
		}

		result.Attempted++
		html := mailer.ServiceDueHTML(user.Name, productName, warranty.SweepLeadDays)
		if err := m.Send(user.Email, mailer.ServiceDueSubject(productName), html); err != nil {
			zap.S().Errorf("sweep: service reminder for record %s failed: %v", service.ID.Hex(), err)
			continue
		}
		result.Sent++

		_, err := db.Collection("services").UpdateOne(
			ctx,
			bson.M{"_id": service.ID},
			bson.M{"$set": bson.M{"dueNotifiedFor": service.NextServiceDueDate}},
		)
		if err != nil {
			zap.S().Errorf("sweep: could not mark service %s as notified: %v", service.ID.Hex(), err)
		}
	}

	zap.S().Infof("sweep: service check done, %d matched, %d attempted, %d sent", result.Matched, result.Attempted, result.Sent)
	return result, nil
}
