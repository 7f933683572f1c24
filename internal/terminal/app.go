package terminal

import (
	"context"
	"errors"
	"fishgame-server/internal/domain"
	"fishgame-server/internal/engine"
	"fishgame-server/internal/systems"
	"fishgame-server/pkg/api"
	"fishgame-server/pkg/logger"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"
)

// Сетка рисуется в рамке, клетка (0,0) - на экране в (originX, originY)
const (
	originX = 1
	originY = 1
)

var (
	styleDefault = tcell.StyleDefault
	styleBorder  = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleWater   = tcell.StyleDefault.Foreground(tcell.ColorNavy)
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleError   = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleOver    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Reverse(true)
)

// App - локальная игра в терминале. Один игрок, одна партия, без сервера.
//
// Стрелки и hjkl плывут (и делают ход), пробел - ход на месте,
// клик мышью по клетке убирает камни, q/Esc - выход.
type App struct {
	Screen tcell.Screen
	Game   *engine.FishGame
	Sounds *Sounds

	status     string
	statusType string

	log *logrus.Entry
}

// NewApp связывает уже инициализированный экран с партией
func NewApp(screen tcell.Screen, game *engine.FishGame, sounds *Sounds) *App {
	if sounds == nil {
		sounds = NewSounds(false)
	}
	screen.EnableMouse()
	return &App{
		Screen: screen,
		Game:   game,
		Sounds: sounds,
		status: "Find the missing fish and bring them home.",
		log:    logger.Component("terminal"),
	}
}

// Run - цикл событий до выхода игрока или отмены ctx
func (a *App) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.Screen.PollEvent()
			if ev == nil {
				// Экран закрыт (Fini)
				close(events)
				return
			}
			events <- ev
		}
	}()

	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !a.HandleEvent(ev) {
				return nil
			}
			a.Draw()
		}
	}
}

// HandleEvent применяет событие к партии. false - игрок хочет выйти.
func (a *App) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			a.click(x-originX, y-originY)
		}
	case *tcell.EventResize:
		a.Screen.Sync()
	}
	return true
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		a.swim(domain.DirUp)
	case tcell.KeyDown:
		a.swim(domain.DirDown)
	case tcell.KeyLeft:
		a.swim(domain.DirLeft)
	case tcell.KeyRight:
		a.swim(domain.DirRight)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 'k':
			a.swim(domain.DirUp)
		case 'j':
			a.swim(domain.DirDown)
		case 'h':
			a.swim(domain.DirLeft)
		case 'l':
			a.swim(domain.DirRight)
		case ' ', '.':
			a.step()
		}
	}
	return true
}

// swim - движение игрока и ход мира. В камень или за край не плывем и ход не тратим.
func (a *App) swim(dir domain.Direction) {
	if a.Game.GameOver() {
		return
	}

	res := systems.CalculateMove(a.Game.Player, dir, a.Game.World)
	switch {
	case res.IsWall:
		a.setStatus("The pond ends here.", engine.LogError)
		return
	case res.BlockedBy != nil:
		a.setStatus("A rock is in the way. Click it to clear.", engine.LogError)
		return
	}

	a.Game.MovePlayer(dir)
	a.step()
}

func (a *App) step() {
	if a.Game.GameOver() {
		return
	}
	if err := a.Game.Step(); err != nil {
		a.log.WithError(err).Error("Step failed")
		a.setStatus(err.Error(), engine.LogError)
		return
	}
	a.consumeLogs()
}

func (a *App) click(x, y int) {
	if a.Game.GameOver() {
		return
	}
	if err := a.Game.Click(x, y); err != nil {
		if !errors.Is(err, domain.ErrOutOfBounds) {
			a.log.WithError(err).Warn("Click failed")
		}
		return
	}
	a.consumeLogs()
}

// consumeLogs показывает последнюю запись и проигрывает звуки
func (a *App) consumeLogs() {
	logs := a.Game.DrainLogs()
	a.Sounds.PlayLogs(logs)
	if len(logs) > 0 {
		last := logs[len(logs)-1]
		a.setStatus(last.Text, last.Type)
	}
}

func (a *App) setStatus(text, logType string) {
	a.status = text
	a.statusType = logType
}

// Status - последнее сообщение в строке состояния
func (a *App) Status() string { return a.status }

// Draw перерисовывает весь экран
func (a *App) Draw() {
	s := a.Screen
	s.Clear()

	w := a.Game.World
	a.drawBorder(w.Width, w.Height)

	for y := 0; y < w.Height; y++ {
		for x := 0; x < w.Width; x++ {
			top := engine.TopAt(w, x, y)
			if top == nil {
				s.SetContent(originX+x, originY+y, '.', nil, styleWater)
				continue
			}
			g := engine.GlyphFor(top)
			r, gr, b := g.RGB()
			style := styleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(gr), int32(b)))
			if a.Game.IsFollowing(top) {
				style = style.Underline(true)
			}
			s.SetContent(originX+x, originY+y, g.Rune(), nil, style)
		}
	}

	row := originY + w.Height + 1
	a.drawText(0, row, styleHUD, fmt.Sprintf("Score %d  Steps %d  Missing %d  Following %d  Home %d",
		a.Game.Score, a.Game.StepsTaken, a.Game.MissingFishLeft(), a.Game.FoundCount(), a.Game.Delivered))

	statusStyle := styleDefault
	if a.statusType == engine.LogError || a.statusType == engine.LogLost {
		statusStyle = styleError
	}
	a.drawText(0, row+1, statusStyle, a.status)

	if a.Game.GameOver() {
		a.drawText(0, row+2, styleOver, fmt.Sprintf(" All fish are home! Final score %d. Press q to quit. ", a.Game.Score))
	} else {
		a.drawText(0, row+2, styleDefault, "arrows/hjkl swim  space wait  click clears rocks  q quit")
	}

	s.Show()
}

func (a *App) drawBorder(w, h int) {
	s := a.Screen
	right, bottom := originX+w, originY+h
	for x := originX; x < right; x++ {
		s.SetContent(x, originY-1, tcell.RuneHLine, nil, styleBorder)
		s.SetContent(x, bottom, tcell.RuneHLine, nil, styleBorder)
	}
	for y := originY; y < bottom; y++ {
		s.SetContent(originX-1, y, tcell.RuneVLine, nil, styleBorder)
		s.SetContent(right, y, tcell.RuneVLine, nil, styleBorder)
	}
	s.SetContent(originX-1, originY-1, tcell.RuneULCorner, nil, styleBorder)
	s.SetContent(right, originY-1, tcell.RuneURCorner, nil, styleBorder)
	s.SetContent(originX-1, bottom, tcell.RuneLLCorner, nil, styleBorder)
	s.SetContent(right, bottom, tcell.RuneLRCorner, nil, styleBorder)
}

func (a *App) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range text {
		a.Screen.SetContent(x+i, y, r, nil, style)
	}
}

// Snapshot - текущее состояние в формате сервера (для отладки и тестов)
func (a *App) Snapshot() *api.ServerResponse {
	return engine.BuildState(a.Game, "local", "UPDATE", nil)
}
