// Package authpb описывает gRPC-сервис проверки учётных данных
// tasktracker.auth.v1.AuthService. Сообщения передаются как
// google.protobuf.Struct, поэтому отдельная генерация кода не нужна.
//
// Запрос Authenticate: {"username": string, "password": string}.
// Ответ: {"id": string, "name": string, "is_admin": bool}. id передаётся
// десятичной строкой: number в Struct это float64, и большие BIGSERIAL теряли бы точность.
package authpb

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName полное имя gRPC-сервиса.
	ServiceName = "tasktracker.auth.v1.AuthService"
	// AuthenticateMethod полное имя метода Authenticate.
	AuthenticateMethod = "/" + ServiceName + "/Authenticate"
)

// AuthServiceServer описывает серверную часть сервиса.
type AuthServiceServer interface {
	Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAuthServiceServer регистрирует реализацию srv на сервере s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthServiceDesc, srv)
}

// AuthServiceDesc описывает сервис для grpc.Server.
var AuthServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Authenticate",
			Handler:    authenticateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tasktracker/auth/v1/auth.proto",
}

func authenticateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AuthServiceServer).Authenticate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: AuthenticateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AuthServiceServer).Authenticate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Credentials содержит разобранный запрос Authenticate.
type Credentials struct {
	Username string
	Password string
}

// NewAuthenticateRequest собирает запрос Authenticate.
func NewAuthenticateRequest(username, password string) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"username": structpb.NewStringValue(username),
		"password": structpb.NewStringValue(password),
	}}
}

// ParseAuthenticateRequest извлекает имя и пароль из запроса.
func ParseAuthenticateRequest(req *structpb.Struct) (Credentials, error) {
	fields := req.GetFields()
	username, ok := fields["username"].GetKind().(*structpb.Value_StringValue)
	if !ok || username.StringValue == "" {
		return Credentials{}, errors.New("username is required")
	}
	password, ok := fields["password"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return Credentials{}, errors.New("password is required")
	}
	return Credentials{Username: username.StringValue, Password: password.StringValue}, nil
}

// Principal содержит разобранный ответ Authenticate.
type Principal struct {
	ID      int64
	Name    string
	IsAdmin bool
}

// NewPrincipalResponse собирает ответ Authenticate.
func NewPrincipalResponse(p Principal) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":       structpb.NewStringValue(strconv.FormatInt(p.ID, 10)),
		"name":     structpb.NewStringValue(p.Name),
		"is_admin": structpb.NewBoolValue(p.IsAdmin),
	}}
}

// ParsePrincipalResponse извлекает пользователя из ответа.
func ParsePrincipalResponse(resp *structpb.Struct) (Principal, error) {
	fields := resp.GetFields()
	rawID, ok := fields["id"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return Principal{}, fmt.Errorf("response has no id")
	}
	id, err := strconv.ParseInt(rawID.StringValue, 10, 64)
	if err != nil {
		return Principal{}, fmt.Errorf("response has malformed id: %w", err)
	}
	name, ok := fields["name"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return Principal{}, fmt.Errorf("response has no name")
	}
	return Principal{
		ID:      id,
		Name:    name.StringValue,
		IsAdmin: fields["is_admin"].GetBoolValue(),
	}, nil
}
