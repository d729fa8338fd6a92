package entity

type PersonalityType struct {
	Id          int
	Name        string
	Code        string
	Description string
}
