package game

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

const (
	// Gap between the masked turn announcement and the drawer privately
	// receiving the literal word, so the word cannot leak before the
	// client has flipped to the turn screen.
	wordRevealDelay = 2 * time.Second
	// Gap between the last correct guess and the board flipping to the
	// next turn.
	turnAdvanceDelay = 3 * time.Second
)

// RoomDeleter is the registry surface a room needs for its own teardown.
type RoomDeleter interface {
	Delete(code string)
}

// ResultSink receives the result record emitted once per finished session.
// Implementations must not block the caller.
type ResultSink interface {
	Record(result SessionResult)
}

type timerKind int

const (
	timerWordReveal timerKind = iota
	timerTurnDeadline
	timerTurnAdvance
)

type timedEvent struct {
	seq  uint64
	kind timerKind
}

// Room is the per-code authority over membership, settings and the turn
// cycle. All state below is touched only by the room's own goroutine; the
// exported methods in room_actor.go hand work to it over channels.
type Room struct {
	code     string
	host     string
	members  []*Member
	settings Settings
	session  *GameSession

	parent  RoomDeleter
	words   WordSource
	results ResultSink
	now     func() time.Time

	seq     uint64
	timers  map[timerKind]*time.Timer
	timerCh chan timedEvent

	inbox       chan envelope
	joinReqs    chan joinRequest
	disconnects chan Conn
	pings       chan struct{}
	done        chan struct{}
}

func NewRoom(code string, parent RoomDeleter, words WordSource, results ResultSink) *Room {
	return &Room{
		code:        code,
		settings:    DefaultSettings(),
		parent:      parent,
		words:       words,
		results:     results,
		now:         time.Now,
		timers:      make(map[timerKind]*time.Timer),
		timerCh:     make(chan timedEvent, 16),
		inbox:       make(chan envelope, 256),
		joinReqs:    make(chan joinRequest),
		disconnects: make(chan Conn, 64),
		pings:       make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

func (r *Room) memberOf(conn Conn) *Member {
	if conn == nil {
		return nil
	}
	for _, m := range r.members {
		if m.conn == conn {
			return m
		}
	}
	return nil
}

func (r *Room) memberByIdentifier(identifier string) *Member {
	for _, m := range r.members {
		if m.Identifier == identifier {
			return m
		}
	}
	return nil
}

func (r *Room) memberInfos() []MemberInfo {
	infos := make([]MemberInfo, 0, len(r.members))
	for _, m := range r.members {
		infos = append(infos, MemberInfo{
			Identifier: m.Identifier,
			Score:      m.Score,
			Connected:  m.Connected(),
		})
	}
	return infos
}

func (r *Room) sessionActive() bool {
	return r.session != nil && r.session.IsActive
}

// --- delivery ---

func (r *Room) broadcast(packet ServerPacket) {
	data := mustMarshal(packet)
	for _, m := range r.members {
		if m.conn == nil {
			continue
		}
		if err := m.conn.Send(data); err != nil {
			slog.Debug("broadcast send failed", "room", r.code, "member", m.Identifier, "error", err)
		}
	}
}

func (r *Room) broadcastExcept(skip *Member, packet ServerPacket) {
	data := mustMarshal(packet)
	for _, m := range r.members {
		if m == skip || m.conn == nil {
			continue
		}
		if err := m.conn.Send(data); err != nil {
			slog.Debug("broadcast send failed", "room", r.code, "member", m.Identifier, "error", err)
		}
	}
}

func (r *Room) unicast(m *Member, packet ServerPacket) {
	if m == nil || m.conn == nil {
		// Disconnected mid-session; the resync path replays state later.
		return
	}
	if err := m.conn.Send(mustMarshal(packet)); err != nil {
		slog.Debug("unicast send failed", "room", r.code, "member", m.Identifier, "error", err)
	}
}

// --- timers ---

// schedule arms a timer for one purpose, cancelling any prior handle for the
// same purpose. The armed callback carries the sequence token of the turn
// that scheduled it; handleTimedEvent drops stale fires.
func (r *Room) schedule(kind timerKind, d time.Duration) {
	r.cancelTimer(kind)
	seq := r.seq
	r.timers[kind] = time.AfterFunc(d, func() {
		select {
		case r.timerCh <- timedEvent{seq: seq, kind: kind}:
		default:
		}
	})
}

func (r *Room) cancelTimer(kind timerKind) {
	if t, ok := r.timers[kind]; ok {
		t.Stop()
		delete(r.timers, kind)
	}
}

func (r *Room) cancelAllTimers() {
	for kind := range r.timers {
		r.cancelTimer(kind)
	}
}

func (r *Room) handleTimedEvent(ev timedEvent) {
	if ev.seq != r.seq {
		// A guess or teardown already moved the session past the turn
		// that armed this timer.
		return
	}

	switch ev.kind {
	case timerWordReveal:
		if r.sessionActive() && r.session.CurrentWord != "" {
			r.unicast(r.members[r.session.DrawerIndex], MakePacketWordToDraw(r.session.CurrentWord))
		}
	case timerTurnDeadline, timerTurnAdvance:
		r.advanceTurn()
	}
}

// --- membership ---

func (r *Room) handleJoinRequest(req joinRequest) error {
	identifier := strings.TrimSpace(req.identifier)
	if identifier == "" {
		return ErrInvalidIdentifier
	}

	if existing := r.memberByIdentifier(identifier); existing != nil {
		r.reattach(existing, req)
		return nil
	}

	// One connection holds at most one seat; a second identifier on the
	// same transport would leave an unreachable member behind.
	if r.memberOf(req.conn) != nil {
		return ErrAlreadyInRoom
	}

	if len(r.members) >= r.settings.MaxPlayers {
		return ErrRoomFull
	}
	if r.settings.IsPrivate && req.password != r.settings.Password {
		return ErrIncorrectPassword
	}

	member := &Member{
		Identifier: identifier,
		UserId:     req.userId,
		conn:       req.conn,
	}
	r.members = append(r.members, member)

	if len(r.members) == 1 {
		r.host = identifier
	}

	r.broadcast(MakePacketPlayerJoined(r.memberInfos()))
	// Host and settings go to the joining connection only; existing
	// members already have them.
	r.unicast(member, MakePacketHostAssigned(r.host))
	r.unicast(member, MakePacketSettingsUpdated(r.settings))

	slog.Info("player joined room", "room", r.code, "identifier", identifier)
	return nil
}

// reattach is the reconnect path: same identifier, fresh transport. Score
// and counters survive; the stale connection is replaced.
func (r *Room) reattach(member *Member, req joinRequest) {
	if member.conn != nil && member.conn != req.conn {
		member.conn.Close("replaced-by-reconnect")
	}
	member.conn = req.conn
	if req.userId != "" {
		member.UserId = req.userId
	}

	r.broadcast(MakePacketPlayerJoined(r.memberInfos()))
	r.unicast(member, MakePacketHostAssigned(r.host))
	r.unicast(member, MakePacketSettingsUpdated(r.settings))
	r.replayTurnState(member)

	slog.Info("player reconnected", "room", r.code, "identifier", member.Identifier)
}

// replayTurnState resyncs one connection with the running turn: masked
// announcement with the true remaining time, plus the literal word when the
// member is the drawer.
func (r *Room) replayTurnState(member *Member) {
	if !r.sessionActive() || r.session.CurrentWord == "" {
		return
	}

	duration := time.Duration(r.settings.RoundDurationSeconds) * time.Second
	remaining := duration - r.now().Sub(r.session.TurnStartedAt)
	if remaining < 0 {
		remaining = 0
	}

	drawer := r.members[r.session.DrawerIndex]
	r.unicast(member, MakePacketNewTurn(
		drawer.Identifier,
		r.session.CurrentRound,
		r.settings.TotalRounds,
		maskWord(r.session.CurrentWord),
		int(remaining.Seconds()),
	))
	if member == drawer {
		r.unicast(member, MakePacketWordToDraw(r.session.CurrentWord))
	}
}

func (r *Room) handleLeave(member *Member) {
	if member == nil {
		return
	}

	idx := -1
	for i, m := range r.members {
		if m == member {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	wasDrawer := r.sessionActive() && idx == r.session.DrawerIndex

	r.members = append(r.members[:idx], r.members[idx+1:]...)
	slog.Info("player left room", "room", r.code, "identifier", member.Identifier)

	if r.session != nil {
		delete(r.session.GuessedThisTurn, member.Identifier)
		delete(r.session.PlayAgainVotes, member.Identifier)
	}

	if member.Identifier == r.host && len(r.members) > 0 {
		r.host = r.members[0].Identifier
		r.broadcast(MakePacketHostAssigned(r.host))
	}

	if len(r.members) > 0 {
		r.broadcast(MakePacketPlayerJoined(r.memberInfos()))
	}

	if r.sessionActive() {
		switch {
		case len(r.members) < 2:
			// Nobody left to guess for anybody; the game cannot go on.
			r.endSession()
		case wasDrawer:
			r.endTurnWithoutDrawer()
		default:
			if idx < r.session.DrawerIndex {
				r.session.DrawerIndex--
			}
			// The leaver may have been the last missing guesser.
			if r.session.CurrentWord != "" && r.allNonDrawersGuessed() {
				r.cancelTimer(timerTurnDeadline)
				r.schedule(timerTurnAdvance, turnAdvanceDelay)
			}
		}
	}

	r.maybeTeardown()
}

// endTurnWithoutDrawer closes the current turn when its drawer is gone. The
// turn still counts; DrawerIndex already points at the next member because
// the drawer's slot was removed.
func (r *Room) endTurnWithoutDrawer() {
	r.cancelAllTimers()
	r.seq++
	r.session.CurrentWord = ""
	r.session.TotalTurnsElapsed++

	if r.session.TotalTurnsElapsed >= r.settings.TotalRounds*len(r.members) {
		r.endSession()
		return
	}

	if r.session.DrawerIndex >= len(r.members) {
		r.session.DrawerIndex = 0
		r.session.CurrentRound++
	}
	r.startNextTurn()
}

func (r *Room) handleDisconnect(conn Conn) {
	member := r.memberOf(conn)
	if member == nil {
		return
	}

	if !r.sessionActive() {
		r.handleLeave(member)
		return
	}

	// Transport drop mid-game: the player keeps their seat, score and
	// draw slot, and may rejoin under the same identifier.
	member.conn = nil
	r.broadcast(MakePacketPlayerJoined(r.memberInfos()))
	slog.Info("player disconnected mid-session", "room", r.code, "identifier", member.Identifier)
}

func (r *Room) maybeTeardown() {
	if r.Closed() || len(r.members) > 0 || r.sessionActive() {
		return
	}
	r.cancelAllTimers()
	r.parent.Delete(r.code)
	close(r.done)
	slog.Info("room torn down", "room", r.code)
}

// --- settings & game control ---

func (r *Room) handleUpdateSettings(from Conn, newSettings Settings) {
	member := r.memberOf(from)
	if member == nil || member.Identifier != r.host {
		return
	}
	if r.sessionActive() || !newSettings.Valid() {
		return
	}
	if !newSettings.IsPrivate {
		newSettings.Password = ""
	}

	r.settings = newSettings
	r.broadcast(MakePacketSettingsUpdated(r.settings))
}

func (r *Room) handleStartGame(from Conn) {
	member := r.memberOf(from)
	if member == nil || member.Identifier != r.host {
		return
	}
	if r.sessionActive() || len(r.members) < 2 {
		return
	}

	for _, m := range r.members {
		m.Score = 0
		m.WordsGuessedCorrectly = 0
		m.WordsDrawnSuccessfully = 0
	}

	r.session = &GameSession{
		IsActive:        true,
		CurrentRound:    1,
		DrawerIndex:     0,
		GuessedThisTurn: make(map[string]struct{}),
		PlayAgainVotes:  make(map[string]struct{}),
	}

	r.broadcast(MakePacketGameStarted(r.settings.TotalRounds))
	slog.Info("game started", "room", r.code, "members", len(r.members), "rounds", r.settings.TotalRounds)
	r.startNextTurn()
}

func (r *Room) startNextTurn() {
	if !r.sessionActive() {
		return
	}

	words := r.words.Generate(1)
	if len(words) == 0 {
		slog.Error("word source returned nothing, ending session", "room", r.code)
		r.endSession()
		return
	}

	r.seq++
	r.session.CurrentWord = words[0]
	r.session.TurnStartedAt = r.now()
	r.session.GuessedThisTurn = make(map[string]struct{})

	drawer := r.members[r.session.DrawerIndex]
	r.broadcast(MakePacketNewTurn(
		drawer.Identifier,
		r.session.CurrentRound,
		r.settings.TotalRounds,
		maskWord(r.session.CurrentWord),
		r.settings.RoundDurationSeconds,
	))

	r.schedule(timerWordReveal, wordRevealDelay)
	r.schedule(timerTurnDeadline, time.Duration(r.settings.RoundDurationSeconds)*time.Second)
}

func (r *Room) handleGuess(from Conn, text string) {
	member := r.memberOf(from)
	if member == nil {
		return
	}
	if !r.sessionActive() || r.session.CurrentWord == "" {
		return
	}

	drawer := r.members[r.session.DrawerIndex]
	if member == drawer {
		return
	}
	if _, already := r.session.GuessedThisTurn[member.Identifier]; already {
		return
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if !strings.EqualFold(text, r.session.CurrentWord) {
		// Wrong guesses double as room chat.
		r.broadcast(MakePacketChatMessage(member.Identifier, text))
		return
	}

	duration := time.Duration(r.settings.RoundDurationSeconds) * time.Second
	points := scoreForGuess(r.now().Sub(r.session.TurnStartedAt), duration)

	member.Score += points
	member.WordsGuessedCorrectly++
	drawer.WordsDrawnSuccessfully++
	r.session.GuessedThisTurn[member.Identifier] = struct{}{}

	r.broadcast(MakePacketCorrectGuess(member.Identifier, text, points))

	if r.allNonDrawersGuessed() {
		r.cancelTimer(timerTurnDeadline)
		r.schedule(timerTurnAdvance, turnAdvanceDelay)
	}
}

func (r *Room) allNonDrawersGuessed() bool {
	drawer := r.members[r.session.DrawerIndex]
	for _, m := range r.members {
		if m == drawer {
			continue
		}
		if _, ok := r.session.GuessedThisTurn[m.Identifier]; !ok {
			return false
		}
	}
	return true
}

// advanceTurn is the single exit from a turn: deadline expiry, all-guessed
// early advance, or a stale-timer no-op. At most one advance happens per
// turn because the sequence token moves forward immediately.
func (r *Room) advanceTurn() {
	if !r.sessionActive() {
		return
	}

	r.cancelAllTimers()
	r.seq++
	r.session.CurrentWord = ""
	r.session.TotalTurnsElapsed++

	if r.session.TotalTurnsElapsed >= r.settings.TotalRounds*len(r.members) {
		r.endSession()
		return
	}

	r.session.DrawerIndex = (r.session.DrawerIndex + 1) % len(r.members)
	if r.session.DrawerIndex == 0 {
		r.session.CurrentRound++
	}
	r.startNextTurn()
}

func (r *Room) endSession() {
	r.cancelAllTimers()
	r.seq++

	r.session.IsActive = false
	r.session.CurrentWord = ""
	r.session.PlayAgainVotes = make(map[string]struct{})

	maxScore := 0
	for _, m := range r.members {
		if m.Score > maxScore {
			maxScore = m.Score
		}
	}

	scores := make([]FinalScore, 0, len(r.members))
	results := make([]PlayerResult, 0, len(r.members))
	winner := ""
	for _, m := range r.members {
		won := m.Score == maxScore && maxScore > 0
		if won && winner == "" {
			winner = m.Identifier
		}
		scores = append(scores, FinalScore{
			Identifier:             m.Identifier,
			Score:                  m.Score,
			WordsGuessedCorrectly:  m.WordsGuessedCorrectly,
			WordsDrawnSuccessfully: m.WordsDrawnSuccessfully,
		})
		results = append(results, PlayerResult{
			Identifier:             m.Identifier,
			UserId:                 m.UserId,
			Score:                  m.Score,
			WordsGuessedCorrectly:  m.WordsGuessedCorrectly,
			WordsDrawnSuccessfully: m.WordsDrawnSuccessfully,
			Won:                    won,
		})
	}

	r.broadcast(MakePacketGameOver(scores, winner))
	slog.Info("game over", "room", r.code, "turns", r.session.TotalTurnsElapsed, "winner", winner)

	if r.results != nil {
		r.results.Record(SessionResult{
			RoomCode:    r.code,
			TotalTurns:  r.session.TotalTurnsElapsed,
			TotalRounds: r.settings.TotalRounds,
			Players:     results,
		})
	}

	// Seats were held for disconnected players while the game ran; with it
	// over there is nothing left to hold. Without this a fully abandoned
	// game would leak the room, since no further events arrive for it.
	r.pruneDisconnected()
	r.maybeTeardown()
}

func (r *Room) pruneDisconnected() {
	kept := r.members[:0]
	pruned := false
	for _, m := range r.members {
		if m.conn != nil {
			kept = append(kept, m)
			continue
		}
		pruned = true
		if r.session != nil {
			delete(r.session.GuessedThisTurn, m.Identifier)
			delete(r.session.PlayAgainVotes, m.Identifier)
		}
		slog.Info("dropped disconnected player", "room", r.code, "identifier", m.Identifier)
	}
	if !pruned {
		return
	}

	r.members = kept
	if len(r.members) == 0 {
		return
	}
	if r.memberByIdentifier(r.host) == nil {
		r.host = r.members[0].Identifier
		r.broadcast(MakePacketHostAssigned(r.host))
	}
	r.broadcast(MakePacketPlayerJoined(r.memberInfos()))
}

func (r *Room) handlePlayAgain(from Conn) {
	member := r.memberOf(from)
	if member == nil {
		return
	}
	if r.session == nil || r.session.IsActive {
		return
	}

	r.session.PlayAgainVotes[member.Identifier] = struct{}{}
	votes := len(r.session.PlayAgainVotes)
	r.broadcast(MakePacketPlayAgainVote(votes, len(r.members)))

	if votes >= len(r.members) {
		// Unanimous: back to a clean lobby.
		r.session = nil
	}
}

// --- relays ---

func (r *Room) handleStroke(from Conn, stroke json.RawMessage) {
	member := r.memberOf(from)
	if member == nil || !r.sessionActive() {
		return
	}
	if member != r.members[r.session.DrawerIndex] {
		return
	}
	r.broadcastExcept(member, MakePacketDrawing(stroke))
}

func (r *Room) handleClearCanvas(from Conn) {
	member := r.memberOf(from)
	if member == nil || !r.sessionActive() {
		return
	}
	if member != r.members[r.session.DrawerIndex] {
		return
	}
	r.broadcastExcept(member, MakePacketClearCanvas())
}

func (r *Room) handleChat(from Conn, text string) {
	member := r.memberOf(from)
	if member == nil {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	r.broadcast(MakePacketChatMessage(member.Identifier, text))
}

func (r *Room) handleResync(from Conn) {
	member := r.memberOf(from)
	if member == nil {
		return
	}
	r.unicast(member, MakePacketPlayerJoined(r.memberInfos()))
	r.unicast(member, MakePacketHostAssigned(r.host))
	r.unicast(member, MakePacketSettingsUpdated(r.settings))
	r.replayTurnState(member)
}
