package channelpush

// AvailabilityUpdate is one contiguous date range of booking limits for a
// channel-mapped product.
type AvailabilityUpdate struct {
	ProductMappingCode string `json:"productMappingCode"`
	StartDate          string `json:"startDate"`
	EndDate            string `json:"endDate"`
	BookingLimit       int    `json:"bookingLimit"`
}

// PushRequest is the payload posted to the channel manager.
type PushRequest struct {
	HotelCode string               `json:"hotelCode"`
	Sign      string               `json:"sign"`
	Updates   []AvailabilityUpdate `json:"updates"`
}

// PushResponse is the channel manager's acknowledgement.
type PushResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
