// Dev tool: seeds an account with a banked balance and streak so the
// withdrawal flow can be exercised locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	externalID := flag.String("external-id", "dev-user-1", "auth provider subject")
	banked := flag.Int64("banked", 250, "banked vibe balance")
	streak := flag.Int("streak", 5, "streak days")
	wallet := flag.String("wallet", "", "payout address (optional)")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var id int64
	err = db.QueryRow(context.Background(), `
		INSERT INTO accounts (external_id, display_name, banked_vibe, streak_days, wallet_address, current_cycle_start)
		VALUES ($1, 'Test Learner', $2, $3, NULLIF($4, ''), now())
		ON CONFLICT (external_id) DO UPDATE
			SET banked_vibe = EXCLUDED.banked_vibe,
			    streak_days = EXCLUDED.streak_days,
			    wallet_address = EXCLUDED.wallet_address
		RETURNING id
	`, *externalID, *banked, *streak, *wallet).Scan(&id)
	if err != nil {
		log.Fatalf("seed account: %v", err)
	}

	fmt.Printf("account %d ready: external_id=%s banked=%d streak=%d\n", id, *externalID, *banked, *streak)
}
