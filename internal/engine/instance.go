package engine

import (
	"context"
	"errors"
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine/handlers"
	"fishgame-server/pkg/api"
	"fishgame-server/pkg/logger"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownAction   = errors.New("unknown action")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
	ErrAdminDisabled   = errors.New("admin commands are disabled")
)

// InstanceCommand обертка, чтобы передать команду и канал для ответа
type InstanceCommand struct {
	Cmd   domain.InternalCommand
	Reply chan CommandResult // nil - ответ не нужен
}

// CommandResult - снимок после команды или ошибка команды
type CommandResult struct {
	State *api.ServerResponse
	Err   error

	// ReadOnly - снимок только для автора запроса, подписчикам не рассылается
	ReadOnly bool
}

// Instance - одна запущенная партия со своей горутиной.
// Все команды партии выполняются последовательно в Run, поэтому FishGame не нуждается в блокировках.
type Instance struct {
	ID   string
	Game *FishGame

	CommandChan chan InstanceCommand

	// Ссылка на Service для доступа к Hub, хендлерам и хранилищам
	Service *GameService

	done     chan struct{}
	finished bool
}

func NewInstance(id string, game *FishGame, service *GameService) *Instance {
	return &Instance{
		ID:          id,
		Game:        game,
		CommandChan: make(chan InstanceCommand, 100),
		Service:     service,
		done:        make(chan struct{}),
	}
}

// Done закрывается, когда цикл партии завершился
func (i *Instance) Done() <-chan struct{} { return i.done }

func (i *Instance) log() *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"component": "instance",
		"session":   i.ID,
	})
}

// Run запускает цикл ЭТОЙ партии до отмены контекста.
// Партия сама уходит из сервиса, если долго нет команд (IdleTimeout)
// или если после конца игры прошел FinishedGrace.
func (i *Instance) Run(ctx context.Context) {
	i.log().Info("Instance loop started")
	defer close(i.done)

	idle := time.NewTimer(i.Service.IdleTimeout)
	defer idle.Stop()

	// nil-канал: пока игра не окончена, таймер не участвует в select
	var graceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			i.stop("Instance loop stopped")
			return

		case <-idle.C:
			i.stop("Session expired after inactivity")
			return

		case <-graceC:
			i.stop("Finished session released")
			return

		case wrapper := <-i.CommandChan:
			res := i.executeCommand(wrapper.Cmd)

			if res.State != nil && !res.ReadOnly {
				i.Service.Hub.SendTo(i.ID, *res.State)
			}
			if wrapper.Reply != nil {
				wrapper.Reply <- res
			}
			if !res.ReadOnly {
				resetTimer(idle, i.Service.IdleTimeout)
			}
			if i.Game.GameOver() && graceC == nil {
				i.finish()
				graceC = time.After(i.Service.FinishedGrace)
			}
		}
	}
}

// stop сохраняет итог, закрывает подписчиков и убирает партию из сервиса
func (i *Instance) stop(reason string) {
	i.finish()
	i.Service.Hub.CloseSession(i.ID)
	i.Service.forget(i.ID)
	i.log().Info(reason)
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// executeCommand выполняет команду в контексте партии
func (i *Instance) executeCommand(cmd domain.InternalCommand) CommandResult {
	handler, ok := i.Service.actionHandlers[cmd.Action]
	if !ok {
		return CommandResult{Err: fmt.Errorf("%s: %w", cmd.Action, ErrUnknownAction)}
	}

	hctx := handlers.Context{
		Game:  i.Game,
		World: i.Game.World,
		Actor: i.Game.Player,
	}

	result, err := handler(hctx, cmd.Payload)
	if err != nil {
		entry := i.log().WithError(err).WithField("action", cmd.Action.String())
		if errors.Is(err, domain.ErrInvariantViolation) {
			entry.Error("Command broke game state")
		} else {
			entry.Debug("Command rejected")
		}
		return CommandResult{Err: err}
	}

	if result.Msg != "" {
		msgType := result.MsgType
		if msgType == "" {
			msgType = LogInfo
		}
		i.Game.AddLog(result.Msg, msgType)
	}

	if cmd.Action.IsReadOnly() {
		// Полный кадр для отрисовки. Лог не трогаем: записи достанутся следующему изменяющему снимку
		return CommandResult{State: BuildState(i.Game, i.ID, "INIT", nil), ReadOnly: true}
	}

	msgType := "UPDATE"
	if cmd.Action == domain.ActionInit {
		msgType = "INIT"
	}
	return CommandResult{State: BuildState(i.Game, i.ID, msgType, i.Game.DrainLogs())}
}

// finish сохраняет реплей и результат один раз за жизнь партии
func (i *Instance) finish() {
	if i.finished {
		return
	}
	i.finished = true

	if rs := i.Game.FinishReplay(); rs != nil && i.Service.Replays != nil && len(rs.Actions) > 0 {
		path, err := i.Service.Replays.SaveReplay(i.ID, rs)
		if err != nil {
			i.log().WithError(err).Error("Failed to save replay")
		} else {
			i.log().WithField("path", path).Info("Replay saved")
		}
	}

	if i.Service.Scores != nil && i.Game.StepsTaken > 0 {
		// Контекст партии к этому моменту может быть уже отменен
		if err := i.Service.Scores.RecordResult(context.Background(), i.Game.Result(i.ID)); err != nil {
			i.log().WithError(err).Error("Failed to record score")
		}
	}
}
