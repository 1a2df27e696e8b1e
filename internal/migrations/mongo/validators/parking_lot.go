package validators

import "go.mongodb.org/mongo-driver/bson"

var ParkingLotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"pid",
			"name",
			"area",
			"capacity",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},
			"pid": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 40,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"area": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"admission_seq": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"contractor_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{7,14}$`,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
