package service

import (
	"context"
	"fmt"
	"math/rand"

	"funbank/models"
)

// wheelOrder is the physical layout of a European roulette wheel,
// clockwise starting from zero. Nearest-number resolution measures
// distance along this ring, not numeric difference.
var wheelOrder = [37]int{
	0, 32, 15, 19, 4, 21, 2, 25, 17, 34, 6, 27, 13, 36, 11, 30,
	8, 23, 10, 5, 24, 16, 33, 1, 20, 14, 31, 9, 22, 18, 29, 7,
	28, 12, 35, 3, 26,
}

var wheelPosition = func() map[int]int {
	m := make(map[int]int, len(wheelOrder))
	for pos, n := range wheelOrder {
		m[n] = pos
	}
	return m
}()

// wheelDistance returns the number of pockets between two numbers on the
// physical wheel, taking the shorter direction around the ring.
func wheelDistance(a, b int) int {
	pa, pb := wheelPosition[a], wheelPosition[b]
	forward := pa - pb
	if forward < 0 {
		forward = -forward
	}
	backward := len(wheelOrder) - forward
	if backward < forward {
		return backward
	}
	return forward
}

// NumberPick is one participant's number choice for the current round
type NumberPick struct {
	UserID int64
	Number int
}

// SpinOutcome reports what a spin resolved to. AutoWin is set when a
// lone surviving participant was paid the whole pot without spinning.
type SpinOutcome struct {
	Game       *models.Game      `json:"game"`
	Result     *int              `json:"result,omitempty"`
	AutoWin    bool              `json:"autoWin"`
	Settlement *SettlementResult `json:"settlement,omitempty"`
}

// NearestResult names the participants closest to the spin result by
// physical wheel distance. Purely informational; Distribute pays.
type NearestResult struct {
	Result   int     `json:"result"`
	Distance int     `json:"distance"`
	UserIDs  []int64 `json:"userIds"`
}

// NextRoundResult reports the state after a round transition. When only
// one participant continued, the game is settled immediately instead
// and Settlement carries the payout.
type NextRoundResult struct {
	Game       *models.Game      `json:"game"`
	Settlement *SettlementResult `json:"settlement,omitempty"`
}

type rouletteService struct {
	uowFactory UnitOfWorkFactory
	spin       func() int
}

// NewRouletteService creates the roulette game service
func NewRouletteService(uowFactory UnitOfWorkFactory) RouletteService {
	return &rouletteService{
		uowFactory: uowFactory,
		spin:       func() int { return rand.Intn(37) },
	}
}

// SaveNumbers records the number picks for the current round. Every
// pick must belong to a recorded participant of that round.
func (s *rouletteService) SaveNumbers(ctx context.Context, gameID int64, picks []NumberPick) error {
	if len(picks) == 0 {
		return fmt.Errorf("pick list must not be empty")
	}
	for _, pick := range picks {
		if pick.Number < 0 || pick.Number > 36 {
			return fmt.Errorf("number %d for user %d: %w", pick.Number, pick.UserID, ErrInvalidNumber)
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeRoulette)
	if err != nil {
		return err
	}

	for _, pick := range picks {
		participant := detail.ParticipantByUser(pick.UserID)
		if participant == nil {
			return fmt.Errorf("user %d: %w", pick.UserID, ErrNotAParticipant)
		}
		number := pick.Number
		participant.Number = &number
		if err := uow.GameRepository().UpsertParticipant(ctx, participant); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Spin resolves the current round. A lone surviving participant wins
// the whole pot without a spin; otherwise every participant must have
// picked a number first, and the result is either the supplied manual
// value or a uniform draw from 0-36.
func (s *rouletteService) Spin(ctx context.Context, gameID int64, manualResult *int) (*SpinOutcome, error) {
	if manualResult != nil && (*manualResult < 0 || *manualResult > 36) {
		return nil, fmt.Errorf("manual result %d: %w", *manualResult, ErrInvalidNumber)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeRoulette)
	if err != nil {
		return nil, err
	}

	if len(detail.Participants) == 1 {
		winner := detail.Participants[0].UserID
		payouts := []Payout{{UserID: winner, Amount: detail.Game.PotAmount}}
		settlement, err := settleGame(ctx, uow, detail.Game, payouts, joinUserIDs([]int64{winner}))
		if err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &SpinOutcome{Game: detail.Game, AutoWin: true, Settlement: settlement}, nil
	}

	for _, p := range detail.Participants {
		if p.Number == nil {
			return nil, fmt.Errorf("user %d has no number: %w", p.UserID, ErrMissingNumbers)
		}
	}

	result := s.spin()
	if manualResult != nil {
		result = *manualResult
	}

	detail.Game.SpinResult = &result
	if err := uow.GameRepository().Update(ctx, detail.Game); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &SpinOutcome{Game: detail.Game, Result: &result}, nil
}

// Winners returns the user ids whose current-round pick matches the
// spin result exactly. An empty result means nearest-number resolution
// or another round is needed.
func (s *rouletteService) Winners(ctx context.Context, gameID int64) ([]int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeRoulette)
	if err != nil {
		return nil, err
	}
	if detail.Game.SpinResult == nil {
		return nil, fmt.Errorf("game %d has not been spun", gameID)
	}

	var winners []int64
	for _, p := range detail.Participants {
		if p.Number != nil && *p.Number == *detail.Game.SpinResult {
			winners = append(winners, p.UserID)
		}
	}
	return winners, nil
}

// DeclareNearest returns the participants whose picks are closest to
// the spin result on the physical wheel. Ties are all included.
func (s *rouletteService) DeclareNearest(ctx context.Context, gameID int64) (*NearestResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeRoulette)
	if err != nil {
		return nil, err
	}
	if detail.Game.SpinResult == nil {
		return nil, fmt.Errorf("game %d has not been spun", gameID)
	}

	result := *detail.Game.SpinResult
	best := len(wheelOrder)
	var nearest []int64
	for _, p := range detail.Participants {
		if p.Number == nil {
			continue
		}
		d := wheelDistance(*p.Number, result)
		switch {
		case d < best:
			best = d
			nearest = []int64{p.UserID}
		case d == best:
			nearest = append(nearest, p.UserID)
		}
	}
	if len(nearest) == 0 {
		return nil, fmt.Errorf("game %d has no numbers recorded: %w", gameID, ErrMissingNumbers)
	}

	return &NearestResult{Result: result, Distance: best, UserIDs: nearest}, nil
}

// Distribute settles the game by splitting the pot evenly across the
// given winners, each of whom must be a current-round participant.
func (s *rouletteService) Distribute(ctx context.Context, gameID int64, winnerIDs []int64) (*SettlementResult, error) {
	if len(winnerIDs) == 0 {
		return nil, fmt.Errorf("winner list must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeRoulette)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(winnerIDs))
	for _, id := range winnerIDs {
		if seen[id] {
			return nil, fmt.Errorf("user %d: %w", id, ErrDuplicateParticipant)
		}
		seen[id] = true
		if detail.ParticipantByUser(id) == nil {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotAParticipant)
		}
	}

	share := detail.Game.SplitEvenly(len(winnerIDs))
	payouts := make([]Payout, 0, len(winnerIDs))
	for _, id := range winnerIDs {
		payouts = append(payouts, Payout{UserID: id, Amount: share})
	}

	result, err := settleGame(ctx, uow, detail.Game, payouts, joinUserIDs(winnerIDs))
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}

// NextRound moves the game to a fresh round. Each continuing
// participant pays the additional bet into the game pot; if only one
// participant continues, their bet is collected and the game settles
// immediately in their favor instead of opening a round.
func (s *rouletteService) NextRound(ctx context.Context, gameID int64, additionalBet int64, continuingIDs []int64) (*NextRoundResult, error) {
	if additionalBet <= 0 {
		return nil, ErrInvalidAmount
	}
	if len(continuingIDs) == 0 {
		return nil, fmt.Errorf("continuing list must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeRoulette)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]bool, len(continuingIDs))
	for _, id := range continuingIDs {
		if seen[id] {
			return nil, fmt.Errorf("user %d: %w", id, ErrDuplicateParticipant)
		}
		seen[id] = true
		if detail.ParticipantByUser(id) == nil {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotAParticipant)
		}
	}

	for _, id := range continuingIDs {
		req := TransferRequest{
			From:   models.UserAccount(id),
			To:     models.PotAccount(),
			Amount: additionalBet,
			Tag:    detail.Game.Tag(),
		}
		if _, err := ExecuteTransfer(ctx, uow, req); err != nil {
			return nil, err
		}
	}
	detail.Game.PotAmount += additionalBet * int64(len(continuingIDs))

	if len(continuingIDs) == 1 {
		// Lone survivor: collect the bet then hand back the whole pot.
		winner := continuingIDs[0]
		payouts := []Payout{{UserID: winner, Amount: detail.Game.PotAmount}}
		if err := uow.GameRepository().Update(ctx, detail.Game); err != nil {
			return nil, err
		}
		settlement, err := settleGame(ctx, uow, detail.Game, payouts, joinUserIDs([]int64{winner}))
		if err != nil {
			return nil, err
		}
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &NextRoundResult{Game: detail.Game, Settlement: settlement}, nil
	}

	detail.Game.RoundNumber++
	detail.Game.SpinResult = nil
	if err := uow.GameRepository().Update(ctx, detail.Game); err != nil {
		return nil, err
	}

	// Fresh participant rows for the new round; numbers come later
	// through SaveNumbers.
	for _, id := range continuingIDs {
		participant := &models.GameParticipant{
			GameID:      gameID,
			UserID:      id,
			RoundNumber: detail.Game.RoundNumber,
		}
		if err := uow.GameRepository().UpsertParticipant(ctx, participant); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &NextRoundResult{Game: detail.Game}, nil
}
