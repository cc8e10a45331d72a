package dto

type ScheduleInput struct {
	Time string   `json:"time"`
	Days []string `json:"days"`
}

type CreateMedicineRequest struct {
	Name      string          `json:"name"`
	Dosage    string          `json:"dosage"`
	Schedules []ScheduleInput `json:"schedules"`
}

// UpdateMedicineRequest leaves nil fields untouched. A present schedules key
// replaces every schedule.
type UpdateMedicineRequest struct {
	Name      *string          `json:"name"`
	Dosage    *string          `json:"dosage"`
	Schedules *[]ScheduleInput `json:"schedules"`
}

type CreateDoctorRequest struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Notes     string `json:"notes"`
}

type UpdateDoctorRequest struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	Notes     *string `json:"notes"`
}
