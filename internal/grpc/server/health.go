// Package server поднимает gRPC-сервер со стандартным сервисом health.
//
// Статус сервиса обновляется по результату проверки хранилища: пока Ping
// проходит, сервис отдает SERVING, иначе NOT_SERVING.
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/safezone/internal/lib/sl"
)

// ServiceName — имя сервиса в ответах health.
const ServiceName = "safezone"

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer отдает состояние SafeZone по gRPC.
type HealthServer struct {
	grpcServer *grpc.Server
	health     *health.Server
	pinger     Pinger
	log        *slog.Logger
}

// NewHealthServer создает HealthServer. Пока первая проверка не выполнена,
// сервис считается NOT_SERVING.
func NewHealthServer(pinger Pinger, log *slog.Logger) *HealthServer {
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, h)

	return &HealthServer{
		grpcServer: s,
		health:     h,
		pinger:     pinger,
		log:        log,
	}
}

// Check проверяет хранилище и обновляет статус.
func (s *HealthServer) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.log.Warn("storage ping failed", sl.Err(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Watch повторяет Check с интервалом interval до отмены ctx.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

// Serve принимает соединения на lis до вызова Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server listening on", slog.String("address", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// Stop переводит сервис в NOT_SERVING и мягко останавливает сервер.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
