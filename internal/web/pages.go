// Package web renders the server-side pages and serves embedded assets.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/onyxandcode/onyx-site/internal/auth"
	"github.com/onyxandcode/onyx-site/internal/chat"
	"github.com/onyxandcode/onyx-site/internal/dashboard"
	"github.com/onyxandcode/onyx-site/internal/intake"
	"github.com/onyxandcode/onyx-site/internal/projects"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

const siteTitle = "Onyx & Code"

// Card is a numbered marketing blurb.
type Card struct {
	ID    string
	Title string
	Desc  string
}

var processSteps = []Card{
	{ID: "01", Title: "Strategic Discovery", Desc: "Dissecting business models to build foundations for high-traffic AI interactions."},
	{ID: "02", Title: "Precision Design", Desc: "Executive-standard builds using optimized frameworks and immersive 3D spatial orchestration."},
	{ID: "03", Title: "Visual Excellence", Desc: "Polishing user journeys with physics, motion, and lighting that defines the premium brand."},
}

var localServices = []Card{
	{ID: "01", Title: "High-End Web Design", Desc: "Luxury websites that redefine your brand. Custom-built with React, Next.js, and premium GSAP animations that make your competitors look outdated."},
	{ID: "02", Title: "3D Interactive Experiences", Desc: "Immersive WebGL environments powered by Three.js. Product configurators, virtual showrooms, and spatial designs that captivate your audience."},
	{ID: "03", Title: "Brand Architecture", Desc: "Strategic brand identity systems. From logo design to full visual language, we create cohesive brand experiences that establish market presence."},
}

// page is the data every template receives.
type page struct {
	Title          string
	Description    string
	Canonical      string
	NoIndex        bool
	Year           int
	Chat           bool
	Greeting       string
	Fallback       intake.Fallback
	FailureMessage string

	Projects  []projects.Project
	Steps     []Card
	Services  []Card
	Message   string
	Login     auth.LoginView
	Dashboard dashboard.View
}

// Config wires Pages.
type Config struct {
	BaseURL  string
	Fallback intake.Fallback
	Projects projects.Repository
	Logger   *logging.Logger
}

// Pages renders every HTML page. It satisfies intake.FailureRenderer,
// auth.LoginRenderer and dashboard.Renderer.
type Pages struct {
	baseURL  string
	fallback intake.Fallback
	projects projects.Repository
	logger   *logging.Logger
	now      func() time.Time
}

// New creates the page renderer.
func New(cfg Config) *Pages {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Projects == nil {
		cfg.Projects = projects.NewInMemoryRepository()
	}
	return &Pages{
		baseURL:  cfg.BaseURL,
		fallback: cfg.Fallback,
		projects: cfg.Projects,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

func (p *Pages) base(title string) page {
	return page{
		Title:          title,
		Year:           p.now().Year(),
		Greeting:       chat.Greeting,
		Fallback:       p.fallback,
		FailureMessage: intake.FailureMessage,
	}
}

func (p *Pages) render(w http.ResponseWriter, status int, name string, data page) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		p.logger.Error("template render failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Landing handles GET /. A failed portfolio read renders an empty portfolio.
func (p *Pages) Landing(w http.ResponseWriter, r *http.Request) {
	data := p.base(siteTitle + " | High-Performance Web Development Agency Ireland")
	data.Description = "Onyx & Code: Monaghan-based digital architects building premium 3D websites, e-commerce platforms, and scalable web applications. Transform your digital presence."
	data.Canonical = p.baseURL + "/"
	data.Chat = true
	data.Steps = processSteps
	data.Projects = projects.PublicList(r, p.projects, p.logger)
	p.render(w, http.StatusOK, "landing.html", data)
}

// LocalLanding handles GET /web-design-monaghan.
func (p *Pages) LocalLanding(w http.ResponseWriter, r *http.Request) {
	data := p.base("Web Design Monaghan | High-Performance Digital Architecture | " + siteTitle)
	data.Description = "The premier web design agency in Monaghan, Ireland. We build luxury websites, 3D interactive experiences, and high-performance digital solutions for businesses."
	data.Canonical = p.baseURL + "/web-design-monaghan"
	data.Chat = true
	data.Services = localServices
	p.render(w, http.StatusOK, "local.html", data)
}

// Success handles GET /success.
func (p *Pages) Success(w http.ResponseWriter, r *http.Request) {
	data := p.base("Protocol Initialized | " + siteTitle)
	data.NoIndex = true
	data.Canonical = p.baseURL + "/success"
	p.render(w, http.StatusOK, "success.html", data)
}

// Labs handles GET /labs.
func (p *Pages) Labs(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, "labs.html", p.base("Labs | "+siteTitle))
}

// Splash handles GET /splash.
func (p *Pages) Splash(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, "splash.html", p.base("Coffee Splash | "+siteTitle))
}

// NotFound renders the 404 page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	data := p.base("Signal Lost | " + siteTitle)
	data.NoIndex = true
	p.render(w, http.StatusNotFound, "notfound.html", data)
}

// RenderSubmitFailure implements intake.FailureRenderer.
func (p *Pages) RenderSubmitFailure(w http.ResponseWriter, status int, message string, fallback intake.Fallback) {
	data := p.base("Transmission Failed | " + siteTitle)
	data.NoIndex = true
	data.Message = message
	data.Fallback = fallback
	p.render(w, status, "failure.html", data)
}

// RenderLogin implements auth.LoginRenderer.
func (p *Pages) RenderLogin(w http.ResponseWriter, status int, view auth.LoginView) {
	data := p.base("Secure Access | " + siteTitle)
	data.NoIndex = true
	data.Login = view
	p.render(w, status, "login.html", data)
}

// RenderDashboard implements dashboard.Renderer.
func (p *Pages) RenderDashboard(w http.ResponseWriter, view dashboard.View) {
	data := p.base("Command Center | " + siteTitle)
	data.NoIndex = true
	data.Dashboard = view
	p.render(w, http.StatusOK, "dashboard.html", data)
}

// Static serves the embedded assets. Mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
