package payload

// DefaultBooking is a booking with fixed values throughout.
func DefaultBooking() Fields {
	return Fields{
		"firstname":             String("Gabriel"),
		"lastname":              String("Testador"),
		"totalprice":            Int(150),
		"depositpaid":           Bool(true),
		"bookingdates.checkin":  String("2025-08-01"),
		"bookingdates.checkout": String("2025-08-10"),
		"additionalneeds":       String("Café da manhã"),
	}
}

// RandomBooking is a booking whose guest name, price, and deposit flag are generated.
func RandomBooking() Fields {
	return Fields{
		"firstname":             FirstName(),
		"lastname":              LastName(),
		"totalprice":            IntBetween(100, 300),
		"depositpaid":           RandomBool(),
		"bookingdates.checkin":  String("2025-09-01"),
		"bookingdates.checkout": String("2025-09-10"),
		"additionalneeds":       String("Café da manhã"),
	}
}

// UpdatedBooking is the full replacement body used when updating a booking.
func UpdatedBooking() Fields {
	return Fields{
		"firstname":             String("Atualizado"),
		"lastname":              String("Teste"),
		"totalprice":            Int(250),
		"depositpaid":           Bool(true),
		"bookingdates.checkin":  String("2025-09-10"),
		"bookingdates.checkout": String("2025-09-15"),
		"additionalneeds":       String("Jantar"),
	}
}
