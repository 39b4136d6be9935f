package model

import (
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Game{},
	&Turn{},
	&Hero{},
	&Mine{},
	&Bot{},
	&HistoricalBot{},
}

// Game is one observed game. Finished only ever goes from false to true.
type Game struct {
	GameID     string    `json:"gameId" gorm:"primaryKey;size:64"`
	InsertedAt time.Time `json:"insertedAt" gorm:"not null"`
	BoardSize  int       `json:"boardSize"`
	MineCount  int       `json:"mineCount"`
	Finished   bool      `json:"finished" gorm:"not null;default:false;index"`
}

func (*Game) TableName() string {
	return "games"
}

////////////////////////
// CHAINS
////////////////////////

// Turn is one version of a game's turn chain.
type Turn struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	GameID         string         `json:"gameId" gorm:"size:64;not null;uniqueIndex:idx_turn_chain,priority:1"`
	Seq            uint           `json:"seq" gorm:"not null;uniqueIndex:idx_turn_chain,priority:2"`
	Turn           int            `json:"turn" gorm:"not null"`
	RawPayload     datatypes.JSON `json:"rawPayload"`
	PreviousTurnID *uint          `json:"previousTurnId" gorm:"index"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (*Turn) TableName() string {
	return "turns"
}

// Mine is one version of a mine slot's chain within a game.
type Mine struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	GameID         string         `json:"gameId" gorm:"size:64;not null;uniqueIndex:idx_mine_chain,priority:1"`
	MineNumber     int            `json:"mineNumber" gorm:"not null;uniqueIndex:idx_mine_chain,priority:2"`
	Seq            uint           `json:"seq" gorm:"not null;uniqueIndex:idx_mine_chain,priority:3"`
	TurnID         uint           `json:"turnId" gorm:"not null;index"`
	Pos            datatypes.JSON `json:"pos"`
	OwnerHeroID    *uint          `json:"ownerHeroId"`
	PreviousMineID *uint          `json:"previousMineId" gorm:"index"`
}

func (*Mine) TableName() string {
	return "mines"
}

// HistoricalBot is one version of a bot's rating chain, one per game it joined.
type HistoricalBot struct {
	ID                      uint   `json:"id" gorm:"primaryKey"`
	UserID                  string `json:"userId" gorm:"size:64;not null;uniqueIndex:idx_historical_bot_chain,priority:1"`
	Seq                     uint   `json:"seq" gorm:"not null;uniqueIndex:idx_historical_bot_chain,priority:2"`
	LastGameID              string `json:"lastGameId" gorm:"size:64"`
	Elo                     int    `json:"elo"`
	PreviousHistoricalBotID *uint  `json:"previousHistoricalBotId" gorm:"index"`
}

func (*HistoricalBot) TableName() string {
	return "historical_bots"
}

////////////////////////
// PER TURN FEATURES
////////////////////////

// Hero is one hero at one turn, with its pathfinding features.
// Distance columns are JSON integer arrays; see core.Distances for their order.
type Hero struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	UserID    *string `json:"userId" gorm:"size:64;index"`
	GameID    string  `json:"gameId" gorm:"size:64;not null;index"`
	TurnID    uint    `json:"turnId" gorm:"not null;index"`
	InGameID  int     `json:"inGameId" gorm:"not null"`
	Life      int     `json:"life"`
	Gold      int     `json:"gold"`
	MineCount int     `json:"mineCount"`
	Died      bool    `json:"died" gorm:"not null;default:false"`

	Pos      datatypes.JSON `json:"pos"`
	SpawnPos datatypes.JSON `json:"spawnPos"`
	LastDir  *string        `json:"lastDir" gorm:"size:8"`
	Crashed  bool           `json:"crashed"`

	HeroDistances             datatypes.JSON `json:"heroDistances"`
	HeroObstructedDistances   datatypes.JSON `json:"heroObstructedDistances"`
	TavernDistances           datatypes.JSON `json:"tavernDistances"`
	TavernObstructedDistances datatypes.JSON `json:"tavernObstructedDistances"`
	MineDistances             datatypes.JSON `json:"mineDistances"`
	MineObstructedDistances   datatypes.JSON `json:"mineObstructedDistances"`
}

func (*Hero) TableName() string {
	return "heroes"
}

////////////////////////
// AGGREGATES
////////////////////////

// Bot is the current rating of a user's bot. Name is kept from the first sighting.
type Bot struct {
	UserID string `json:"userId" gorm:"primaryKey;size:64"`
	Name   string `json:"name" gorm:"size:255"`
	Elo    int    `json:"elo"`
}

func (*Bot) TableName() string {
	return "bots"
}
