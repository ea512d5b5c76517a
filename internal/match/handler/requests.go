package handler

import "renalmatch/internal/match/service"

// SubmitDonorRequest is the HTTP request body for PUT /sessions/{id}/donor.
// Field-level validation happens in the domain constructors so the rules
// live in exactly one place.
type SubmitDonorRequest struct {
	Age          int      `json:"age"`
	HLA          []string `json:"hla"`
	BloodGroup   string   `json:"blood_group"`
	KidneySizeMM int      `json:"kidney_size_mm"`
	Pincode      string   `json:"pincode"`
}

// ToInput maps the wire shape onto the service input.
func (r SubmitDonorRequest) ToInput() service.SubmitDonorInput {
	return service.SubmitDonorInput{
		Age:          r.Age,
		HLA:          r.HLA,
		BloodGroup:   r.BloodGroup,
		KidneySizeMM: r.KidneySizeMM,
		Pincode:      r.Pincode,
	}
}

// SubmitPatientRequest is the HTTP request body for PUT /sessions/{id}/patient.
type SubmitPatientRequest struct {
	Age          int      `json:"age"`
	HLA          []string `json:"hla"`
	BloodGroup   string   `json:"blood_group"`
	KidneySizeMM int      `json:"kidney_size_mm"`
	PRA          int      `json:"pra"`
	Pincode      string   `json:"pincode"`
}

// ToInput maps the wire shape onto the service input.
func (r SubmitPatientRequest) ToInput() service.SubmitPatientInput {
	return service.SubmitPatientInput{
		Age:          r.Age,
		HLA:          r.HLA,
		BloodGroup:   r.BloodGroup,
		KidneySizeMM: r.KidneySizeMM,
		PRA:          r.PRA,
		Pincode:      r.Pincode,
	}
}
