package validators

import "go.mongodb.org/mongo-driver/bson"

var hhmm = bson.M{"bsonType": "string", "pattern": "^([01][0-9]|2[0-3]):[0-5][0-9]$"}

var ProviderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"business_name", "category", "time_zone", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{"bsonType": "objectId"},
			"business_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"category": bson.M{
				"enum": []string{"barber", "beauty", "spa", "fitness", "health", "cleaning", "tutoring", "other"},
			},
			"time_zone": bson.M{"bsonType": "string"},
			"working_hours": bson.M{
				"bsonType": "array",
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"day"},
					"properties": bson.M{
						"day":       bson.M{"enum": []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}},
						"open":      bson.M{"bsonType": "string"},
						"close":     bson.M{"bsonType": "string"},
						"is_closed": bson.M{"bsonType": "bool"},
					},
				},
			},
			"availability_exceptions": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"date", "is_available"},
					"properties": bson.M{
						"date":         bson.M{"bsonType": "date"},
						"is_available": bson.M{"bsonType": "bool"},
						"custom_hours": bson.M{
							"bsonType": "object",
							"properties": bson.M{
								"open":  hhmm,
								"close": hhmm,
							},
						},
					},
				},
			},
			"services": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"id", "name", "duration", "price"},
					"properties": bson.M{
						"id":       bson.M{"bsonType": "string"},
						"name":     bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
						"duration": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 1440},
						"price":    bson.M{"bsonType": []string{"double", "int", "long", "decimal"}, "minimum": 0},
					},
				},
			},
			"rating":        bson.M{"bsonType": []string{"double", "int"}, "minimum": 0, "maximum": 5},
			"total_ratings": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			"created_at":    bson.M{"bsonType": "date"},
			"updated_at":    bson.M{"bsonType": "date"},
		},
	},
}
