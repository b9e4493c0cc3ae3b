package handler

import (
	"context"

	"github.com/Astemirdum/table-booking/booking/internal/model"
	"github.com/Astemirdum/table-booking/booking/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookingService interface {
	CreateTable(ctx context.Context, req model.CreateTableRequest) (int, error)
	GetTables(ctx context.Context) (model.ListTables, error)
	GetTable(ctx context.Context, id int) (model.Table, error)
	CreateReservation(ctx context.Context, req model.CreateReservationRequest) (string, error)
	GetReservations(ctx context.Context, page, size int) (model.ListReservations, error)
}

type AuthService interface {
	SignUp(ctx context.Context, req model.SignUpRequest) (string, error)
	SignIn(ctx context.Context, req model.SignInRequest) (model.SignInResponse, error)
}

var (
	_ BookingService = (*service.Service)(nil)
	_ AuthService    = (*service.AuthService)(nil)
)
