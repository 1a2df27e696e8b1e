package validators

import "go.mongodb.org/mongo-driver/bson"

var ReportValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"type",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			// null for a general complaint not tied to a lot.
			"parking_lot_id": bson.M{
				"bsonType": []string{"objectId", "null"},
			},
			"user_id": bson.M{
				"bsonType": []string{"objectId", "null"},
			},
			"type": bson.M{
				"enum": []string{"OVERPARKING", "UNAUTHORIZED_PARKING", "TICKET_FRAUD", "OVERCHARGING", "OTHER"},
			},
			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},
			"status": bson.M{
				"enum": []string{"PENDING", "RESOLVED", "DISMISSED"},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
