package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"
)

const createInboundsTable = `
create table if not exists inbounds (
	id integer primary key autoincrement,
	tag text not null,
	up integer,
	down integer,
	slave_id integer not null default 0
)`

var protocols = []string{"vmess", "vless", "trojan", "shadowsocks"}

// trafficgen maintains a synthetic panel database whose inbound counters
// keep moving, providing a local target for the monitor without a real
// x-ui installation. It is the only tool in this repo that writes to a
// database file; the monitor itself never does.
func main() {
	var (
		dbPath   = flag.String("db", "x-ui-test.db", "database file to create and update")
		inbounds = flag.Int("inbounds", 4, "inbound rows to seed per slave")
		slaves   = flag.Int("slaves", 2, "number of slaves (slave 0 is the master)")
		interval = flag.Duration("interval", 1*time.Second, "time between counter updates")
		runFor   = flag.Duration("duration", 0, "how long to run (0 = until interrupted)")
		seed     = flag.Int64("seed", 0, "random seed (0 = time-based)")
		nullRow  = flag.Bool("null-row", true, "seed one inbound with NULL counters")
	)
	flag.Parse()

	if *inbounds <= 0 {
		log.Fatalf("inbounds must be >0 (got %d)", *inbounds)
	}
	if *slaves <= 0 {
		log.Fatalf("slaves must be >0 (got %d)", *slaves)
	}
	if *interval <= 0 {
		log.Fatalf("interval must be >0 (got %s)", interval.String())
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open %s: %v", *dbPath, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	// WAL lets the monitor keep reading while this process writes.
	if _, err := db.Exec("pragma journal_mode=WAL"); err != nil {
		log.Fatalf("set journal mode: %v", err)
	}
	if _, err := db.Exec("pragma busy_timeout=5000"); err != nil {
		log.Fatalf("set busy timeout: %v", err)
	}
	if _, err := db.Exec(createInboundsTable); err != nil {
		log.Fatalf("create inbounds table: %v", err)
	}

	seeded, err := seedRows(db, rng, *slaves, *inbounds, *nullRow)
	if err != nil {
		log.Fatalf("seed rows: %v", err)
	}
	log.Printf("trafficgen: %d inbounds across %d slaves in %s (seed=%d)",
		seeded, *slaves, *dbPath, *seed)

	ctx := context.Background()
	var cancel context.CancelFunc
	if *runFor > 0 {
		ctx, cancel = context.WithTimeout(ctx, *runFor)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	var ticks, updates, inserts int
	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case sig := <-sigChan:
			log.Printf("trafficgen: received signal %v, stopping", sig)
			running = false
		case <-ticker.C:
			ticks++
			n, err := bumpCounters(db, rng)
			if err != nil {
				log.Fatalf("update counters: %v", err)
			}
			updates += n
			// A fresh inbound now and then exercises the monitor's
			// new-record path.
			if ticks%15 == 0 {
				if err := insertInbound(db, rng, *slaves); err != nil {
					log.Fatalf("insert inbound: %v", err)
				}
				inserts++
			}
		}
	}

	log.Println("trafficgen: complete")
	log.Printf("ticks=%d rows_updated=%d inbounds_added=%d db=%s",
		ticks, updates, inserts, *dbPath)
}

func seedRows(db *sql.DB, rng *rand.Rand, slaves, perSlave int, withNullRow bool) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare("insert into inbounds (tag, up, down, slave_id) values (?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	count := 0
	for s := 0; s < slaves; s++ {
		for i := 0; i < perSlave; i++ {
			tag := fmt.Sprintf("%s-%d", protocols[(s*perSlave+i)%len(protocols)], i+1)
			if _, err := stmt.Exec(tag, rng.Int63n(10<<20), rng.Int63n(40<<20), s); err != nil {
				_ = stmt.Close()
				_ = tx.Rollback()
				return 0, err
			}
			count++
		}
	}
	if withNullRow {
		if _, err := tx.Exec("insert into inbounds (tag, up, down, slave_id) values ('never-reported', NULL, NULL, 0)"); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, err
		}
		count++
	}
	_ = stmt.Close()
	return count, tx.Commit()
}

// bumpCounters advances a random subset of non-NULL rows by a few KB to
// MB per direction, within one transaction per tick.
func bumpCounters(db *sql.DB, rng *rand.Rand) (int, error) {
	rows, err := db.Query("select id from inbounds where up is not null")
	if err != nil {
		return 0, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, err
	}
	_ = rows.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	stmt, err := tx.Prepare("update inbounds set up = up + ?, down = down + ? where id = ?")
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	updated := 0
	for _, id := range ids {
		// Roughly a third of the rows sit idle each tick.
		if rng.Intn(3) == 0 {
			continue
		}
		if _, err := stmt.Exec(rng.Int63n(512<<10), rng.Int63n(2<<20), id); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return 0, err
		}
		updated++
	}
	_ = stmt.Close()
	return updated, tx.Commit()
}

func insertInbound(db *sql.DB, rng *rand.Rand, slaves int) error {
	tag := fmt.Sprintf("%s-extra-%d", protocols[rng.Intn(len(protocols))], rng.Intn(1000))
	_, err := db.Exec("insert into inbounds (tag, up, down, slave_id) values (?, 0, 0, ?)",
		tag, rng.Intn(slaves))
	return err
}
