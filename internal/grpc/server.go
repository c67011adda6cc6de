package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"filmorate-service/internal/domain"
	"filmorate-service/internal/service"
)

// Server реализует LookupServer поверх сервисов фильмов и пользователей.
type Server struct {
	films  *service.FilmService
	users  *service.UserService
	logger *slog.Logger
}

// NewServer создает новый экземпляр gRPC сервера.
func NewServer(films *service.FilmService, users *service.UserService, logger *slog.Logger) *Server {
	return &Server{films: films, users: users, logger: logger}
}

// Register регистрирует сервис на grpc.Server.
func (s *Server) Register(gs *grpc.Server) {
	gs.RegisterService(&LookupServiceDesc, s)
}

// filmInfo - краткая карточка фильма для других сервисов.
func filmInfo(film domain.Film) map[string]any {
	genres := make([]any, 0, len(film.Genres))
	for _, g := range film.Genres {
		genres = append(genres, g.Name)
	}
	info := map[string]any{
		"id":     film.ID,
		"name":   film.Name,
		"likes":  film.LikeCount(),
		"genres": genres,
		"mpa":    "",
	}
	if film.Mpa != nil {
		info["mpa"] = film.Mpa.Name
	}
	return info
}

func (s *Server) CheckFilmExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	s.logger.InfoContext(ctx, "gRPC CheckFilmExists called", slog.Int64("filmID", req.GetValue()))

	if req.GetValue() <= 0 {
		s.logger.WarnContext(ctx, "gRPC CheckFilmExists called with invalid film id")
		return nil, status.Errorf(codes.InvalidArgument, "film id must be positive")
	}
	ok, err := s.films.Exists(ctx, req.GetValue())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to check film existence", slog.Int64("filmID", req.GetValue()), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to check film existence: %v", err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *Server) CheckUserExists(ctx context.Context, req *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error) {
	s.logger.InfoContext(ctx, "gRPC CheckUserExists called", slog.Int64("userID", req.GetValue()))

	if req.GetValue() <= 0 {
		s.logger.WarnContext(ctx, "gRPC CheckUserExists called with invalid user id")
		return nil, status.Errorf(codes.InvalidArgument, "user id must be positive")
	}
	ok, err := s.users.Exists(ctx, req.GetValue())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to check user existence", slog.Int64("userID", req.GetValue()), slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to check user existence: %v", err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *Server) GetFilmInfo(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	s.logger.InfoContext(ctx, "gRPC GetFilmInfo called", slog.Int64("filmID", req.GetValue()))

	if req.GetValue() <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "film id must be positive")
	}
	film, err := s.films.GetByID(ctx, req.GetValue())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			s.logger.WarnContext(ctx, "Film not found for GetFilmInfo", slog.Int64("filmID", req.GetValue()))
			return nil, status.Errorf(codes.NotFound, "film not found with ID %d", req.GetValue())
		}
		s.logger.ErrorContext(ctx, "Failed to get film for GetFilmInfo", slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to retrieve film details: %v", err)
	}

	out, err := structpb.NewStruct(filmInfo(film))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode film info: %v", err)
	}
	return out, nil
}

// GetPopularFilms принимает count; неположительное значение означает 10.
func (s *Server) GetPopularFilms(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.ListValue, error) {
	s.logger.InfoContext(ctx, "gRPC GetPopularFilms called", slog.Int64("count", req.GetValue()))

	films, err := s.films.Popular(ctx, int(req.GetValue()))
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to rank films", slog.String("error", err.Error()))
		return nil, status.Errorf(codes.Internal, "failed to rank films: %v", err)
	}
	items := make([]any, 0, len(films))
	for _, film := range films {
		items = append(items, filmInfo(film))
	}
	out, err := structpb.NewList(items)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode films: %v", err)
	}
	return out, nil
}
