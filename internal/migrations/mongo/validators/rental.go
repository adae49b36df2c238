package validators

import "go.mongodb.org/mongo-driver/bson"

var RentalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"car_id",
			"customer_id",
			"license_number",
			"rental_type",
			"start_date",
			"pick_up_time",
			"end_date",
			"drop_time",
			"start_at",
			"end_at",
			"amount_cents",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"car_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"license_number": bson.M{
				"bsonType": "string",
				"pattern":  "^[A-Z0-9]{6,15}$",
			},

			"rental_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"Hourly", "Daily"},
			},

			"start_date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"end_date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"pick_up_time": bson.M{
				"bsonType": "string",
				"pattern":  `^([01][0-9]|2[0-3]):[0-5][0-9]$`,
			},

			"drop_time": bson.M{
				"bsonType": "string",
				"pattern":  `^([01][0-9]|2[0-3]):[0-5][0-9]$`,
			},

			"number_of_hours": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"start_at": bson.M{
				"bsonType": "date",
			},

			"end_at": bson.M{
				"bsonType": "date",
			},

			"amount_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"paid_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"redeemed_cents": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"payments": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"kind", "method", "amount_cents", "paid_at"},
					"properties": bson.M{
						"kind": bson.M{
							"bsonType": "string",
							"enum":     []string{"advance", "final"},
						},
						"method": bson.M{
							"bsonType": "string",
							"enum":     []string{"Cash", "Card", "UPI"},
						},
					},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Booked",
					"Pending",
					"Confirmed",
					"Final Pending",
					"Completed",
					"Cancelled",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
