package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"configurator-backend/internal/configurator"
	"configurator-backend/internal/domain"
)

// /c/{token} — страница конфигурации по ссылке "поделиться"
func (e *Env) HandleSharedConfigurationPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token := strings.Trim(strings.TrimPrefix(r.URL.Path, "/c/"), "/")

	cfg, err := e.Gateway.GetByShareToken(r.Context(), token)
	if err != nil {
		var notFound *domain.ShareTokenNotFoundError
		if errors.As(err, &notFound) {
			renderSharedNotFound(w)
			return
		}
		e.Log.Error("shared page: load failed", "error", err.Error())
		http.Error(w, "временно недоступно, попробуйте позже", http.StatusServiceUnavailable)
		return
	}

	view := configurator.Project(e.Catalog, cfg.Selections, cfg.InstallationRequested, cfg.Location)
	renderSharedConfiguration(w, cfg, view, e.checkoutURL(cfg.ID))
}

func renderSharedConfiguration(w http.ResponseWriter, cfg *domain.Configuration, view configurator.SummaryView, checkoutURL string) {
	var rows strings.Builder
	for _, item := range view.Items {
		fmt.Fprintf(&rows, `
				<tr>
					<td>%s</td>
					<td class="price">%s</td>
				</tr>`,
			template.HTMLEscapeString(item.Label),
			formatMoney(item.Price),
		)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="ru">
<head>
	<meta charset="utf-8">
	<title>Ваша конфигурация – %s</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<meta name="robots" content="noindex">
	<style>
		body {
			margin: 0;
			font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
			background: #f3f4f6;
			color: #111827;
		}
		.wrapper {
			min-height: 100vh;
			display: flex;
			align-items: center;
			justify-content: center;
			padding: 24px;
		}
		.card {
			background: #ffffff;
			border-radius: 16px;
			box-shadow: 0 20px 45px rgba(15, 23, 42, 0.18);
			max-width: 560px;
			width: 100%%;
			padding: 24px 24px 20px;
		}
		h1 {
			font-size: 20px;
			margin: 0 0 8px 0;
		}
		.badge {
			display: inline-flex;
			align-items: center;
			border-radius: 999px;
			padding: 2px 10px;
			font-size: 11px;
			background: #eef2ff;
			color: #4f46e5;
			margin-bottom: 12px;
		}
		table {
			width: 100%%;
			border-collapse: collapse;
			margin: 12px 0;
		}
		td {
			padding: 8px 0;
			border-bottom: 1px solid #e5e7eb;
			font-size: 14px;
		}
		td.price {
			text-align: right;
			white-space: nowrap;
		}
		.total {
			display: flex;
			justify-content: space-between;
			font-size: 18px;
			font-weight: 600;
			margin: 12px 0 16px;
		}
		.btn {
			display: block;
			text-align: center;
			background: #4f46e5;
			color: #ffffff;
			border-radius: 10px;
			padding: 12px;
			text-decoration: none;
			font-weight: 600;
		}
		.meta {
			font-size: 12px;
			color: #6b7280;
			margin-top: 8px;
		}
	</style>
</head>
<body>
	<div class="wrapper">
		<div class="card">
			<div class="badge">Сохранённая конфигурация</div>
			<h1>Ваша конфигурация</h1>
			<table>%s
			</table>
			<div class="total"><span>Итого</span><span>%s</span></div>
			<a class="btn" href="%s">Перейти к оформлению</a>
			<p class="meta">
				Город: %s<br>
				Создана: %s
			</p>
		</div>
	</div>
</body>
</html>`,
		template.HTMLEscapeString(cfg.ID),
		rows.String(),
		formatMoney(cfg.ComputedTotal),
		template.HTMLEscapeString(checkoutURL),
		template.HTMLEscapeString(cfg.Location),
		cfg.CreatedAt.Format("02.01.2006 15:04"),
	)
}

func renderSharedNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprint(w, `<!DOCTYPE html>
<html lang="ru">
<head>
	<meta charset="utf-8">
	<title>Конфигурация не найдена</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body style="font-family: system-ui, sans-serif; background: #f3f4f6; padding: 48px; text-align: center;">
	<h1>Конфигурация не найдена</h1>
	<p>Ссылка устарела или содержит ошибку.</p>
</body>
</html>`)
}

// formatMoney: 12500 -> "12 500 ₴"
func formatMoney(m domain.Money) string {
	s := fmt.Sprintf("%d", int64(m))
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var b strings.Builder
	for i, ch := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(ch)
	}
	out := b.String() + " ₴"
	if neg {
		out = "-" + out
	}
	return out
}
