package validators

import "go.mongodb.org/mongo-driver/bson"

var WalletValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"customer_id", "redeemable_cents"},
		"properties": bson.M{
			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},
			"redeemable_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var RentalLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "owner", "expires_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"owner": bson.M{
				"bsonType": "string",
			},
			"expires_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
