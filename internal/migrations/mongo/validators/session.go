package validators

import "go.mongodb.org/mongo-driver/bson"

var SessionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"parking_lot_id",
			"vehicle_number",
			"entry_time",
			"entry_method",
			"status",
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
			"user_id": bson.M{
				"bsonType": "objectId",
			},
			"ticket_id": bson.M{
				"bsonType": "objectId",
			},
			"entry_time": bson.M{
				"bsonType": "date",
			},
			"exit_time": bson.M{
				"bsonType": "date",
			},
			"entry_method": bson.M{
				"enum": []string{"QR", "OFFLINE"},
			},
			"status": bson.M{
				"enum": []string{"ACTIVE", "CLOSED"},
			},
			"amount_charged": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
