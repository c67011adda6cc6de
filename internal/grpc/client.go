package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// FilmInfo - карточка фильма, возвращаемая клиентом.
type FilmInfo struct {
	ID     int64
	Name   string
	Mpa    string
	Likes  int
	Genres []string
}

// Client вызывает методы filmorate.v1.Lookup.
type Client struct {
	conn    *grpc.ClientConn
	logger  *slog.Logger
	timeout time.Duration
}

// NewClient создает клиента. Дополнительные опции добавляются после
// insecure-транспорта (например, WithContextDialer в тестах).
func NewClient(addr string, logger *slog.Logger, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		logger.Error("Failed to create Lookup gRPC client", slog.String("address", addr), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create lookup client for %s: %w", addr, err)
	}
	return &Client{conn: conn, logger: logger, timeout: 3 * time.Second}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.conn.Invoke(callCtx, fullMethod(method), in, out); err != nil {
		c.logger.ErrorContext(ctx, "Lookup gRPC call failed", slog.String("method", method), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (c *Client) CheckFilmExists(ctx context.Context, filmID int64) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, "CheckFilmExists", wrapperspb.Int64(filmID), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) CheckUserExists(ctx context.Context, userID int64) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.invoke(ctx, "CheckUserExists", wrapperspb.Int64(userID), out); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) GetFilmInfo(ctx context.Context, filmID int64) (FilmInfo, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "GetFilmInfo", wrapperspb.Int64(filmID), out); err != nil {
		return FilmInfo{}, err
	}
	return decodeFilmInfo(out), nil
}

func (c *Client) GetPopularFilms(ctx context.Context, count int64) ([]FilmInfo, error) {
	out := new(structpb.ListValue)
	if err := c.invoke(ctx, "GetPopularFilms", wrapperspb.Int64(count), out); err != nil {
		return nil, err
	}
	films := make([]FilmInfo, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		films = append(films, decodeFilmInfo(v.GetStructValue()))
	}
	return films, nil
}

func decodeFilmInfo(s *structpb.Struct) FilmInfo {
	fields := s.GetFields()
	info := FilmInfo{
		ID:    int64(fields["id"].GetNumberValue()),
		Name:  fields["name"].GetStringValue(),
		Mpa:   fields["mpa"].GetStringValue(),
		Likes: int(fields["likes"].GetNumberValue()),
	}
	for _, g := range fields["genres"].GetListValue().GetValues() {
		info.Genres = append(info.Genres, g.GetStringValue())
	}
	return info
}
