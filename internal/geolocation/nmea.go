package geolocation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"mihrab.noorapp.org/internal/logging"
	"mihrab.noorapp.org/internal/qibla"
)

// Thresholds a GGA fix must meet when high accuracy is requested.
const (
	MinSatellites = 4
	MaxHDOP       = 5.0
)

var errNoFix = errors.New("gps stream ended without a usable fix")

// PortOpener opens the byte stream a GPS receiver writes NMEA sentences to.
type PortOpener func() (io.ReadCloser, error)

// SerialOpener opens a serial port with 8N1 framing.
func SerialOpener(portName string, baudRate uint) PortOpener {
	return func() (io.ReadCloser, error) {
		return serial.Open(serial.OpenOptions{
			PortName:        portName,
			BaudRate:        baudRate,
			DataBits:        8,
			StopBits:        1,
			MinimumReadSize: 1,
			ParityMode:      serial.PARITY_NONE,
		})
	}
}

// NMEA reads NMEA-0183 sentences until it sees a fix good enough for the
// request. The port is opened per request and closed afterwards.
type NMEA struct {
	open   PortOpener
	logger *slog.Logger
}

func NewNMEA(open PortOpener, logger *slog.Logger) *NMEA {
	return &NMEA{
		open:   open,
		logger: logging.Component(logger, "gps_nmea"),
	}
}

func (n *NMEA) RequestLocation(ctx context.Context, opts qibla.LocationOptions) (qibla.GeoCoordinate, error) {
	port, err := n.open()
	if err != nil {
		return qibla.GeoCoordinate{}, fmt.Errorf("open gps port: %w", err)
	}

	var closeOnce sync.Once
	closePort := func() {
		closeOnce.Do(func() { logging.SafeCloseWithLogging(port, n.logger, "close_gps_port") })
	}
	defer closePort()

	type outcome struct {
		coord qibla.GeoCoordinate
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		coord, err := n.readFix(port, opts.HighAccuracy)
		done <- outcome{coord: coord, err: err}
	}()

	select {
	case out := <-done:
		return out.coord, out.err
	case <-ctx.Done():
		// Closing the port unblocks the reader goroutine.
		closePort()
		return qibla.GeoCoordinate{}, ctx.Err()
	}
}

func (n *NMEA) readFix(r io.Reader, highAccuracy bool) (qibla.GeoCoordinate, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil {
			n.logger.Debug("skipping nmea sentence", slog.String("error", err.Error()))
			continue
		}

		if coord, ok := acceptFix(sentence, highAccuracy); ok {
			return coord, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return qibla.GeoCoordinate{}, fmt.Errorf("read gps port: %w", err)
	}
	return qibla.GeoCoordinate{}, errNoFix
}

// acceptFix reports whether sentence carries a position that satisfies the
// accuracy requirement.
func acceptFix(sentence nmea.Sentence, highAccuracy bool) (qibla.GeoCoordinate, bool) {
	switch sentence.DataType() {
	case nmea.TypeRMC:
		m := sentence.(nmea.RMC)
		if highAccuracy || m.Validity != nmea.ValidRMC {
			return qibla.GeoCoordinate{}, false
		}
		return qibla.GeoCoordinate{Latitude: m.Latitude, Longitude: m.Longitude}, true

	case nmea.TypeGGA:
		m := sentence.(nmea.GGA)
		if m.FixQuality != nmea.GPS && m.FixQuality != nmea.DGPS {
			return qibla.GeoCoordinate{}, false
		}
		if highAccuracy && (m.NumSatellites < MinSatellites || m.HDOP > MaxHDOP) {
			return qibla.GeoCoordinate{}, false
		}
		return qibla.GeoCoordinate{Latitude: m.Latitude, Longitude: m.Longitude}, true
	}
	return qibla.GeoCoordinate{}, false
}
