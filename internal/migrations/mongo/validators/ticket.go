package validators

import "go.mongodb.org/mongo-driver/bson"

var TicketValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"parking_lot_id",
			"vehicle_number",
			"vehicle_type",
			"amount",
			"status",
			"valid_till",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"parking_lot_id": bson.M{
				"bsonType": "objectId",
			},
			"vehicle_number": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 20,
			},
			"vehicle_type": bson.M{
				"enum": []string{"4w", "2w", "3w"},
			},
			"amount": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"status": bson.M{
				"enum": []string{"CREATED", "USED", "EXPIRED"},
			},
			"valid_till": bson.M{
				"bsonType": "date",
			},
			"used_at": bson.M{
				"bsonType": "date",
			},
			"expired_at": bson.M{
				"bsonType": "date",
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
