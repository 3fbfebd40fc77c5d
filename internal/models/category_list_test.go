package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

type categoryDoc struct {
	Category CategoryList `bson:"category"`
}

func TestCategoryListDecodesLegacyString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"category": " Coffee , Hot,,coffee "})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc categoryDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Category) != 2 || doc.Category[0] != "Coffee" || doc.Category[1] != "Hot" {
		t.Fatalf("unexpected categories %v", doc.Category)
	}
}

func TestCategoryListDecodesArray(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"category": bson.A{"Bakery", " ", "Sweet"}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var doc categoryDoc
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !doc.Category.Has("sweet") || len(doc.Category) != 2 {
		t.Fatalf("unexpected categories %v", doc.Category)
	}
}

func TestCategoryListMarshalsNilAsEmptyArray(t *testing.T) {
	raw, err := bson.Marshal(categoryDoc{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out bson.M
	if err := bson.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	arr, ok := out["category"].(bson.A)
	if !ok || len(arr) != 0 {
		t.Fatalf("expected empty array, got %#v", out["category"])
	}
}
