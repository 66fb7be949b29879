package kflow

//go:generate mockgen -destination=mock_unit_test.go -package=kflow . Unit
