package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"phone",
			"role",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{7,14}$`,
			},
			"role": bson.M{
				"enum": []string{"PARKER", "ATTENDANT", "ADMIN"},
			},
			"parking_lot_id": bson.M{
				"bsonType": "objectId",
			},
		},
	},
}
