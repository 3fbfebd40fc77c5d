package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMenuIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("menu_items").Indexes()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().
				SetName("slug_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{
					"isDeleted": false,
				}),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("category_createdAt"),
		},
	}

	log.Println("EnsureMenuIndexes: creating slug_unique and category_createdAt indexes")
	_, err := indexes.CreateMany(ctx, models)
	if err != nil {
		log.Println("EnsureMenuIndexes: index error:", err)
		return err
	}
	log.Println("EnsureMenuIndexes: indexes created")
	return nil
}

func EnsureAdminIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("admins").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureAdminIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureAdminIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureAdminIndexes: email_unique index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	statusIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("status_createdAt"),
	}

	log.Println("EnsureOrderIndexes: creating status_createdAt index")
	_, err := indexes.CreateOne(ctx, statusIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: status index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: status_createdAt index created")
	return nil
}
