package validators

import "go.mongodb.org/mongo-driver/bson"

var VehicleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"vehicle_number",
			"name",
			"type",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"vehicle_number": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 20,
			},
			// null marks a plate that nobody has claimed yet.
			"user_id": bson.M{
				"bsonType": []string{"objectId", "null"},
			},
			"name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},
			"type": bson.M{
				"enum": []string{"4w", "2w", "3w"},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
