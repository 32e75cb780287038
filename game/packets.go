package game

import (
	"encoding/json"
	"log/slog"
)

// Client packet types. One closed set; anything else is dropped.
const (
	PacketJoinLobby      = "join_lobby"
	PacketLeaveLobby     = "leave_lobby"
	PacketUpdateSettings = "updateSettings"
	PacketStartGame      = "startGame"
	PacketJoinGameRoom   = "joinGameRoom"
	PacketDrawing        = "drawing"
	PacketClearCanvas    = "clearCanvas"
	PacketSendGuess      = "sendGuess"
	PacketPlayAgain      = "playAgain"
	PacketCheckRoom      = "checkRoomExists"
	PacketInviteFriend   = "inviteFriend"
	PacketChatMessage    = "sendChatMessage"
	PacketDirectMessage  = "sendDirectMessage"
	PacketUserOnline     = "user_online"
	PacketUserOffline    = "user_offline"
)

// Server packet types.
const (
	EventPlayerJoined    = "PlayerJoined"
	EventHostAssigned    = "HostAssigned"
	EventSettingsUpdated = "lobbySettingsUpdated"
	EventGameStarted     = "GameStarted"
	EventNewTurn         = "NewTurn"
	EventWordToDraw      = "WordToDraw"
	EventCorrectGuess    = "CorrectGuess"
	EventChatMessage     = "ChatMessage"
	EventGameOver        = "GameOver"
	EventPlayAgainVote   = "playAgainVote"
	EventDrawing         = "drawing"
	EventClearCanvas     = "clearCanvas"
	EventFriendInvited   = "friendInvited"
	EventFriendStatus    = "friend_status_update"
	EventStatsUpdated    = "statsUpdated"
	EventRoomExists      = "roomExists"
	EventError           = "error"
)

type ClientPacket struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type ServerPacket struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// --- client payloads ---

type JoinLobbyData struct {
	RoomCode   string `json:"roomCode"`
	Identifier string `json:"identifier"`
	Password   string `json:"password,omitempty"`
}

type LeaveLobbyData struct {
	RoomCode string `json:"roomCode"`
}

type UpdateSettingsData struct {
	RoomCode string   `json:"roomCode"`
	Settings Settings `json:"settings"`
}

type GuessData struct {
	RoomCode string `json:"roomCode"`
	Text     string `json:"text"`
}

type InviteFriendData struct {
	FriendIdentity string `json:"friendIdentity"`
	RoomCode       string `json:"roomCode"`
	RoomName       string `json:"roomName"`
	InviterName    string `json:"inviterName"`
}

type DirectMessageData struct {
	RecipientIdentity string `json:"recipientIdentity"`
	Text              string `json:"text"`
}

type ChatData struct {
	RoomCode string `json:"roomCode"`
	Text     string `json:"text"`
}

type CheckRoomData struct {
	RoomCode string `json:"roomCode"`
}

type JoinGameRoomData struct {
	RoomCode   string `json:"roomCode"`
	Identifier string `json:"identifier"`
}

type PresenceData struct {
	UserId string `json:"userId"`
}

// --- server payloads ---

type MemberInfo struct {
	Identifier string `json:"identifier"`
	Score      int    `json:"score"`
	Connected  bool   `json:"connected"`
}

type MembersData struct {
	Members []MemberInfo `json:"members"`
}

type HostAssignedData struct {
	Host string `json:"host"`
}

type GameStartedData struct {
	TotalRounds int `json:"totalRounds"`
}

type NewTurnData struct {
	Drawer        string `json:"drawer"`
	Round         int    `json:"round"`
	TotalRounds   int    `json:"totalRounds"`
	MaskedWord    string `json:"maskedWord"`
	TimeRemaining int    `json:"timeRemaining"`
}

type WordToDrawData struct {
	Word string `json:"word"`
}

type CorrectGuessData struct {
	Guesser string `json:"guesser"`
	Text    string `json:"text"`
	Points  int    `json:"points"`
}

type ChatMessageData struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type FinalScore struct {
	Identifier             string `json:"identifier"`
	Score                  int    `json:"score"`
	WordsGuessedCorrectly  int    `json:"wordsGuessedCorrectly"`
	WordsDrawnSuccessfully int    `json:"wordsDrawnSuccessfully"`
}

type GameOverData struct {
	Scores []FinalScore `json:"scores"`
	Winner string       `json:"winner"`
}

type PlayAgainVoteData struct {
	Votes  int `json:"votes"`
	Needed int `json:"needed"`
}

type FriendInvitedData struct {
	RoomCode    string `json:"roomCode"`
	RoomName    string `json:"roomName"`
	InviterName string `json:"inviterName"`
}

type FriendStatusData struct {
	UserId string `json:"userId"`
	Online bool   `json:"online"`
}

type StatsUpdatedData struct {
	XPDelta       int64   `json:"xpDelta"`
	XP            int64   `json:"xp"`
	Level         int     `json:"level"`
	CurrentXP     int64   `json:"currentXP"`
	XPToNextLevel int64   `json:"xpToNextLevel"`
	LevelUp       bool    `json:"levelUp"`
	GamesPlayed   int     `json:"gamesPlayed"`
	GamesWon      int     `json:"gamesWon"`
	WinRate       float64 `json:"winRate"`
	WinStreak     int     `json:"winStreak"`
}

type RoomExistsData struct {
	RoomCode string `json:"roomCode"`
	Exists   bool   `json:"exists"`
}

type ErrorData struct {
	Error string `json:"error"`
}

// --- constructors ---

func MakePacketPlayerJoined(members []MemberInfo) ServerPacket {
	return ServerPacket{Type: EventPlayerJoined, Data: MembersData{Members: members}}
}

func MakePacketHostAssigned(host string) ServerPacket {
	return ServerPacket{Type: EventHostAssigned, Data: HostAssignedData{Host: host}}
}

func MakePacketSettingsUpdated(settings Settings) ServerPacket {
	return ServerPacket{Type: EventSettingsUpdated, Data: settings}
}

func MakePacketGameStarted(totalRounds int) ServerPacket {
	return ServerPacket{Type: EventGameStarted, Data: GameStartedData{TotalRounds: totalRounds}}
}

func MakePacketNewTurn(drawer string, round, totalRounds int, maskedWord string, timeRemaining int) ServerPacket {
	return ServerPacket{Type: EventNewTurn, Data: NewTurnData{
		Drawer:        drawer,
		Round:         round,
		TotalRounds:   totalRounds,
		MaskedWord:    maskedWord,
		TimeRemaining: timeRemaining,
	}}
}

func MakePacketWordToDraw(word string) ServerPacket {
	return ServerPacket{Type: EventWordToDraw, Data: WordToDrawData{Word: word}}
}

func MakePacketCorrectGuess(guesser, text string, points int) ServerPacket {
	return ServerPacket{Type: EventCorrectGuess, Data: CorrectGuessData{Guesser: guesser, Text: text, Points: points}}
}

func MakePacketChatMessage(sender, text string) ServerPacket {
	return ServerPacket{Type: EventChatMessage, Data: ChatMessageData{Sender: sender, Text: text}}
}

func MakePacketGameOver(scores []FinalScore, winner string) ServerPacket {
	return ServerPacket{Type: EventGameOver, Data: GameOverData{Scores: scores, Winner: winner}}
}

func MakePacketPlayAgainVote(votes, needed int) ServerPacket {
	return ServerPacket{Type: EventPlayAgainVote, Data: PlayAgainVoteData{Votes: votes, Needed: needed}}
}

func MakePacketDrawing(stroke json.RawMessage) ServerPacket {
	return ServerPacket{Type: EventDrawing, Data: stroke}
}

func MakePacketClearCanvas() ServerPacket {
	return ServerPacket{Type: EventClearCanvas}
}

func MakePacketFriendInvited(roomCode, roomName, inviterName string) ServerPacket {
	return ServerPacket{Type: EventFriendInvited, Data: FriendInvitedData{
		RoomCode:    roomCode,
		RoomName:    roomName,
		InviterName: inviterName,
	}}
}

func MakePacketFriendStatus(userId string, online bool) ServerPacket {
	return ServerPacket{Type: EventFriendStatus, Data: FriendStatusData{UserId: userId, Online: online}}
}

func MakePacketStatsUpdated(data StatsUpdatedData) ServerPacket {
	return ServerPacket{Type: EventStatsUpdated, Data: data}
}

func MakePacketRoomExists(roomCode string, exists bool) ServerPacket {
	return ServerPacket{Type: EventRoomExists, Data: RoomExistsData{RoomCode: roomCode, Exists: exists}}
}

func MakePacketError(err error) ServerPacket {
	return ServerPacket{Type: EventError, Data: ErrorData{Error: err.Error()}}
}

func mustMarshal(packet ServerPacket) []byte {
	data, err := json.Marshal(packet)
	if err != nil {
		// Payload structs only; cannot fail for any value we build.
		slog.Error("marshal server packet", "type", packet.Type, "error", err)
		return []byte(`{"type":"` + packet.Type + `"}`)
	}
	return data
}
