package validators

import "go.mongodb.org/mongo-driver/bson"

var RiskScoreValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"parking_lot_id",
			"score",
			"level",
			"analyzed_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"parking_lot_id": bson.M{
				"bsonType": "objectId",
			},
			"score": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
				"maximum":  100,
			},
			"level": bson.M{
				"enum": []string{"LOW", "MEDIUM", "HIGH"},
			},
			"reason": bson.M{
				"bsonType": "string",
			},
			"factors": bson.M{
				"bsonType": []string{"array", "null"},
				"items":    bson.M{"bsonType": "string"},
			},
			"analyzed_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
