package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/bgxboard/internal/domain/results"
	. "github.com/smartystreets/goconvey/convey"
)

const expertCSV = "\ufeffFinalPosition,RaceNumber,FirstName,LastName,TotalPoints,Race_vitosha\n" +
	"1,10,Georgi,Ivanov,87,25\n" +
	"2,20,Nikola,Petrov,75\n"

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestParse(t *testing.T) {
	Convey("Given a CSV with a byte order mark and a short row", t, func() {
		table, err := Parse(strings.NewReader(expertCSV))
		So(err, ShouldBeNil)

		Convey("Then the header is clean and rows are padded", func() {
			So(table.Columns[0], ShouldEqual, "FinalPosition")
			So(table.Rows, ShouldHaveLength, 2)
			So(table.Rows[0]["Race_vitosha"], ShouldEqual, "25")
			So(table.Rows[1]["Race_vitosha"], ShouldEqual, "")
			So(table.Rows[1]["LastName"], ShouldEqual, "Petrov")
		})
	})

	Convey("Given an empty input", t, func() {
		table, err := Parse(strings.NewReader(""))

		Convey("Then the table has no rows", func() {
			So(err, ShouldBeNil)
			So(table.Rows, ShouldBeEmpty)
		})
	})

	Convey("Given a broken quote", t, func() {
		_, err := Parse(strings.NewReader("A,B\n\"1,2\n"))

		Convey("Then the table is rejected", func() {
			So(errors.Is(err, ErrMalformedCSV), ShouldBeTrue)
		})
	})
}

func TestCSVSource_Load(t *testing.T) {
	ctx := context.Background()

	Convey("Given a results directory", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "expert.csv", expertCSV)

		Convey("When an existing category is loaded without a cache", func() {
			s := NewCSVSource(dir)
			table, err := s.Load(ctx, "expert")
			So(err, ShouldBeNil)
			So(table.Rows, ShouldHaveLength, 2)

			Convey("Then file changes are visible on the next load", func() {
				writeFile(t, dir, "expert.csv", expertCSV+"3,30,Ivan,Dimitrov,60,18\n")
				again, err := s.Load(ctx, "expert")
				So(err, ShouldBeNil)
				So(again.Rows, ShouldHaveLength, 3)
			})
		})

		Convey("When a category has no file", func() {
			_, err := NewCSVSource(dir).Load(ctx, "women")

			Convey("Then it reports not found", func() {
				So(errors.Is(err, results.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a key tries to leave the directory", func() {
			s := NewCSVSource(dir)
			for _, key := range []string{"", "..", "../expert", `a\b`} {
				_, err := s.Load(ctx, key)
				So(errors.Is(err, ErrInvalidCategory), ShouldBeTrue)
			}
		})

		Convey("When the cache is enabled", func() {
			s := NewCSVSource(dir, WithCacheTTL(time.Minute))
			first, err := s.Load(ctx, "expert")
			So(err, ShouldBeNil)
			writeFile(t, dir, "expert.csv", expertCSV+"3,30,Ivan,Dimitrov,60,18\n")

			Convey("Then the cached table is served until invalidated", func() {
				cached, err := s.Load(ctx, "expert")
				So(err, ShouldBeNil)
				So(cached, ShouldPointTo, first)

				s.Invalidate("expert")
				fresh, err := s.Load(ctx, "expert")
				So(err, ShouldBeNil)
				So(fresh.Rows, ShouldHaveLength, 3)
			})

			Convey("Then InvalidateAll clears every category", func() {
				s.InvalidateAll()
				fresh, err := s.Load(ctx, "expert")
				So(err, ShouldBeNil)
				So(fresh.Rows, ShouldHaveLength, 3)
			})
		})
	})
}

func TestCSVSource_Watch(t *testing.T) {
	Convey("Given a cached source watching its directory", t, func() {
		dir := t.TempDir()
		writeFile(t, dir, "junior.csv", expertCSV)
		s := NewCSVSource(dir, WithCacheTTL(time.Hour))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- s.Watch(ctx) }()

		_, err := s.Load(ctx, "junior")
		So(err, ShouldBeNil)

		Convey("When the file is rewritten", func() {
			// Give the watcher time to register the directory.
			time.Sleep(100 * time.Millisecond)
			writeFile(t, dir, "junior.csv", expertCSV+"3,30,Ivan,Dimitrov,60,18\n")

			Convey("Then the next load sees the new rows", func() {
				rows := 0
				for deadline := time.Now().Add(3 * time.Second); time.Now().Before(deadline); {
					table, err := s.Load(ctx, "junior")
					So(err, ShouldBeNil)
					if rows = len(table.Rows); rows == 3 {
						break
					}
					time.Sleep(20 * time.Millisecond)
				}
				So(rows, ShouldEqual, 3)

				cancel()
				So(<-done, ShouldBeNil)
			})
		})
	})
}
