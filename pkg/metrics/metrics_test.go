package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/smalldrop/phead.go/pkg/l0/comm"
	"github.com/smalldrop/phead.go/pkg/phead"
)

func TestDeviceMetrics(t *testing.T) {
	reg := NewRegistry()
	m := NewDeviceMetrics(reg)

	m.ObserveFrameEvent(comm.EventFrameReady)
	m.ObserveFrameEvent(comm.EventFrameReady)
	m.ObserveFrameEvent(comm.EventOverflow)
	m.ChecksumFailed()
	m.PingHandled()
	m.StateChanged(context.Background(), comm.LinkLost)
	m.CommandHandled(phead.GroupGeneral, phead.CmdInit, phead.Result{Warnings: []comm.ErrorCode{comm.ErrCodeInvalidVolume}})
	m.CommandHandled(phead.GroupUV, phead.CmdTurnOnUV, phead.Result{Err: &comm.CommandError{Code: comm.ErrCodeNoUv}})
	m.CommandHandled(phead.GroupPrint, phead.CmdStartPrint, phead.Result{Err: errors.New("stalled")})

	require.Equal(t, 2.0, testutil.ToFloat64(m.FrameEvents.WithLabelValues("ready")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FrameEvents.WithLabelValues("overflow")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ChecksumFailure))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Pings))
	require.Equal(t, 2.0, testutil.ToFloat64(m.LinkState))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("general", "0x01", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("uv", "0x01", "NoUv")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("print", "0x01", "Other")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Warnings.WithLabelValues("InvalidVolume")))
}

func TestCommandLabelsBounded(t *testing.T) {
	reg := NewRegistry()
	m := NewDeviceMetrics(reg)
	bad := phead.Result{Err: &comm.CommandError{Code: comm.ErrCodeBadCommand}}
	for g := 0x07; g < 0x100; g++ {
		for _, code := range []byte{0x00, 0x01, 0x7f, 0xff} {
			m.CommandHandled(phead.Group(g), code, bad)
		}
	}
	m.CommandHandled(phead.GroupPrint, 0x7f, bad)
	m.CommandHandled(phead.GroupPrint, 0x80, bad)

	require.Equal(t, 2, testutil.CollectAndCount(m.Commands))
	require.Equal(t, float64((0x100-0x07)*4), testutil.ToFloat64(m.Commands.WithLabelValues("unknown", "unknown", "BadCommand")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("print", "unknown", "BadCommand")))
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	m := NewDeviceMetrics(reg)
	m.PingHandled()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "phead_pings_total 1"))
}
