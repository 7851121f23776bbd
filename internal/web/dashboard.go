package web

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func Dashboard(state DashboardState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Fire vs Ice</title>
  </head>
  <body>
    <main class="shell">
`)
		writeHeader(&b, state)
		for _, notice := range state.Notices {
			b.WriteString(`      <p class="notice">` + esc(notice) + "</p>\n")
		}
		if state.Active {
			writeScoreboard(&b, state)
			writeActivities(&b, state.Activities)
		} else {
			writeStartForm(&b)
		}
		writeLeaders(&b, "fire", "Fire leaders", state.FireLeaders)
		writeLeaders(&b, "ice", "Ice leaders", state.IceLeaders)
		writeGames(&b, state.Games)
		b.WriteString(`    </main>
    <script>
      const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
      ws.onmessage = () => location.reload();
      document.querySelectorAll("[data-action]").forEach((button) => {
        button.addEventListener("click", async () => {
          await fetch(button.dataset.action, { method: "POST" });
        });
      });
      const form = document.getElementById("startForm");
      if (form) {
        form.addEventListener("submit", async (event) => {
          event.preventDefault();
          const res = await fetch("/api/game/start", {
            method: "POST",
            headers: { "Content-Type": "application/json" },
            body: JSON.stringify({
              username: form.elements.username.value.trim(),
              goal_score: Number(form.elements.goal_score.value) || 0
            })
          });
          if (!res.ok) {
            const data = await res.json();
            document.getElementById("startResult").textContent = data.error || "Failed to start game.";
          }
        });
      }
    </script>
  </body>
</html>
`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeHeader(b *strings.Builder, state DashboardState) {
	status := "disconnected"
	if state.Connected {
		status = "connected"
	}
	b.WriteString(`      <header class="hero">
        <span class="tag">Fire vs Ice</span>
`)
	if state.StreamUsername != "" {
		b.WriteString(`        <h1>@` + esc(state.StreamUsername) + "</h1>\n")
	}
	b.WriteString(`        <span class="status ` + status + `">` + status + "</span>\n")
	if state.Active {
		b.WriteString(`        <button data-action="/api/rounds">Next round</button>
        <button data-action="/api/game/reset">Reset game</button>
`)
	}
	b.WriteString("      </header>\n")
}

func writeStartForm(b *strings.Builder) {
	b.WriteString(`      <section class="panel">
        <h2>Start a game</h2>
        <form id="startForm">
          <input name="username" placeholder="Stream username" autocomplete="off" required/>
          <input name="goal_score" type="number" min="1" placeholder="Goal score (3000)"/>
          <button type="submit" class="primary">Start</button>
        </form>
        <div id="startResult" class="result"></div>
      </section>
`)
}

func writeScoreboard(b *strings.Builder, state DashboardState) {
	b.WriteString(`      <section class="panel scoreboard">
        <h2>Round ` + itoa(state.RoundNumber) + ` <small>goal ` + itoa(state.GoalScore) + "</small></h2>\n")
	if state.RoundEndsAt != "" {
		b.WriteString(`        <p class="deadline">Ends ` + esc(state.RoundEndsAt) + "</p>\n")
	}
	if state.Banner != "" {
		b.WriteString(`        <p class="banner">` + esc(state.Banner) + "</p>\n")
	}
	for _, team := range state.Teams {
		b.WriteString(`        <div class="team ` + esc(team.Team) + `">
          <span class="label">` + esc(team.Label) + `</span>
          <span class="score">` + itoa(team.Score) + `</span>
          <div class="bar"><div style="width:` + itoa(team.Percent) + `%"></div></div>
        </div>
`)
	}
	b.WriteString("      </section>\n")
}

func writeActivities(b *strings.Builder, items []ActivityItem) {
	b.WriteString(`      <section class="panel">
        <h2>Live activity</h2>
`)
	if len(items) == 0 {
		b.WriteString(`        <p class="empty">Waiting for viewers...</p>
      </section>
`)
		return
	}
	b.WriteString("        <ul class=\"activity\">\n")
	for _, item := range items {
		b.WriteString(`          <li class="` + esc(item.Kind) + " " + esc(item.Team) + `"><time>` + esc(item.Time) + "</time> ")
		if item.Username != "" {
			b.WriteString("<strong>" + esc(item.Username) + "</strong> ")
		}
		b.WriteString(esc(item.Text) + "</li>\n")
	}
	b.WriteString("        </ul>\n      </section>\n")
}

func writeLeaders(b *strings.Builder, team, title string, rows []LeaderboardRow) {
	b.WriteString(`      <section class="panel leaders ` + team + `">
        <h2>` + title + "</h2>\n")
	if len(rows) == 0 {
		b.WriteString(`        <p class="empty">No points yet.</p>
      </section>
`)
		return
	}
	b.WriteString("        <ol>\n")
	for _, row := range rows {
		b.WriteString(`          <li><span class="rank">` + itoa(row.Rank) + `</span> ` + esc(row.Username) + ` <span class="points">` + itoa(row.Points) + "</span></li>\n")
	}
	b.WriteString("        </ol>\n      </section>\n")
}

func writeGames(b *strings.Builder, games []GameSummary) {
	b.WriteString(`      <section class="panel history">
        <h2>Game history</h2>
`)
	if len(games) == 0 {
		b.WriteString(`        <p class="empty">No games played yet.</p>
      </section>
`)
		return
	}
	b.WriteString("        <table>\n          <tr><th>Started</th><th>Ended</th><th>Rounds</th><th>Fire</th><th>Ice</th></tr>\n")
	for _, game := range games {
		ended := game.EndedAt
		if ended == "" {
			ended = "in progress"
		}
		b.WriteString("          <tr><td>" + esc(game.StartedAt) + "</td><td>" + esc(ended) + "</td><td>" +
			itoa(game.TotalRounds) + "</td><td>" + itoa(game.FireWins) + "</td><td>" + itoa(game.IceWins) + "</td></tr>\n")
	}
	b.WriteString("        </table>\n      </section>\n")
}
