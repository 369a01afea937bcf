package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, r io.Reader, name string, size int64) (string, error) {
	args := m.Called(ctx, r, name, size)
	if f, ok := args.Get(0).(func(context.Context, io.Reader, string, int64) string); ok {
		return f(ctx, r, name, size), args.Error(1)
	}
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Retrieve(ctx context.Context, location string) (io.ReadCloser, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, location string) (bool, error) {
	args := m.Called(ctx, location)
	return args.Bool(0), args.Error(1)
}
