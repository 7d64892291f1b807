// Package apitest is an in-memory stand-in for the business-admin API, served
// by a chi router. Tests seed it, point a client at it and inspect what was
// written.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jesses-code-adventures/biz/internal/api"
	"github.com/jesses-code-adventures/biz/internal/models"
)

// Request is one call the fake received.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

func (r Request) String() string {
	return r.Method + " " + r.Path
}

type Fake struct {
	Token string

	mu         sync.Mutex
	Tasks      map[string]*models.Task
	Projects   map[string]*models.Project
	Quotations map[string]*models.Quotation
	Invoices   map[string]*models.Invoice
	Payments   map[string]*models.Payment
	Customers  []models.Customer
	Accounts   []models.Account
	Products   []models.ProductService
	Users      []models.User
	Profile    models.Profile

	// fail maps "METHOD /path" to a status code returned instead of handling the call.
	fail map[string]int
	// before runs ahead of every handler; tests use it to block or observe calls.
	before func(r *http.Request)

	requests []Request
	seq      int
}

func New(token string) *Fake {
	return &Fake{
		Token:      token,
		Tasks:      map[string]*models.Task{},
		Projects:   map[string]*models.Project{},
		Quotations: map[string]*models.Quotation{},
		Invoices:   map[string]*models.Invoice{},
		Payments:   map[string]*models.Payment{},
		fail:       map[string]int{},
		Profile:    models.Profile{ID: "u1", Name: "Thandi Mokoena", Email: "thandi@example.com"},
	}
}

// Start serves the fake until the test ends and returns its base URL.
func (f *Fake) Start(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(f.Router())
	t.Cleanup(srv.Close)
	return srv.URL
}

// Requests returns the calls received so far, optionally only those whose
// "METHOD /path" starts with prefix.
func (f *Fake) Requests(prefix string) []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Request
	for _, r := range f.requests {
		if strings.HasPrefix(r.String(), prefix) {
			out = append(out, r)
		}
	}
	return out
}

// FailOn makes every "METHOD /path" call answer with status.
func (f *Fake) FailOn(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method+" "+path] = status
}

func (f *Fake) SetBefore(fn func(r *http.Request)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.before = fn
}

func (f *Fake) Task(id string) models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.Tasks[id]
}

func (f *Fake) Quotation(id string) models.Quotation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.Quotations[id]
}

func (f *Fake) Invoice(id string) models.Invoice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.Invoices[id]
}

func (f *Fake) AddTask(t models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ProgressMode == "" {
		t.ProgressMode = models.ProgressModeManual
	}
	f.Tasks[t.ID] = &t
}

func (f *Fake) AddQuotation(q models.Quotation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Quotations[q.ID] = &q
}

func (f *Fake) AddInvoice(inv models.Invoice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Invoices[inv.ID] = &inv
}

func (f *Fake) AddPayment(p models.Payment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Payments[p.ID] = &p
}

func (f *Fake) AddProject(p models.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Projects[p.ID] = &p
}

func (f *Fake) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(f.record, f.authenticate, f.failures)

	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", f.listTasks)
		r.Post("/", f.createTask)
		r.Get("/{id}", f.getTask)
		r.Put("/{id}", f.updateTask)
		r.Delete("/{id}", f.deleteTask)
		r.Put("/{id}/progress", f.updateProgress)
		r.Post("/{id}/progress/increment", f.incrementProgress)
		r.Post("/{id}/steps", f.addStep)
	})

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", f.listProjects)
		r.Post("/", f.createProject)
		r.Get("/{id}", f.getProject)
		r.Put("/{id}", f.updateProject)
		r.Delete("/{id}", f.deleteProject)
	})

	r.Route("/api/quotations", func(r chi.Router) {
		r.Get("/", f.listQuotations)
		r.Post("/", f.createQuotation)
		r.Get("/{id}", f.getQuotation)
		r.Put("/{id}", f.updateQuotation)
		r.Delete("/{id}", f.deleteQuotation)
		r.Get("/{id}/pdf", f.pdf)
		r.Post("/{id}/send-pdf-email", f.sendEmail)
	})

	r.Route("/api/invoices", func(r chi.Router) {
		r.Get("/", f.listInvoices)
		r.Post("/", f.createInvoice)
		r.Get("/{id}", f.getInvoice)
		r.Put("/{id}", f.updateInvoice)
		r.Delete("/{id}", f.deleteInvoice)
		r.Get("/{id}/pdf", f.pdf)
		r.Post("/{id}/send-pdf-email", f.sendEmail)
		r.Post("/{id}/payment", f.recordPayment)
		r.Get("/{id}/payments", f.listPayments)
		r.Get("/{id}/payments-summary", f.paymentSummary)
	})
	r.Delete("/api/invoice-payments/{id}", f.reversePayment)

	r.Get("/api/customers", f.listCustomers)
	r.Get("/api/customers/search", f.searchCustomers)
	r.Get("/api/users", f.listUsers)
	r.Get("/api/profile", f.getProfile)
	r.Get("/api/products-services", f.listProducts)
	r.Get("/accounts", f.listAccounts)

	return r
}

func (f *Fake) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		f.mu.Lock()
		f.requests = append(f.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		before := f.before
		f.mu.Unlock()

		if before != nil {
			before(r)
		}
		next.ServeHTTP(w, r)
	})
}

func (f *Fake) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+f.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *Fake) failures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		status, ok := f.fail[r.Method+" "+r.URL.Path]
		f.mu.Unlock()
		if ok {
			writeJSON(w, status, map[string]string{"error": "forced failure"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": what + " not found"})
}

func (f *Fake) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func sortedValues[T any](m map[string]*T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, *m[k])
	}
	return out
}

func (f *Fake) listTasks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, sortedValues(f.Tasks))
}

func (f *Fake) getTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tasks[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func applyTaskInput(t *models.Task, in *api.TaskInput) {
	t.Title = in.Title
	t.Description = in.Description
	t.ProjectID = in.ProjectID
	t.AssigneeID = in.AssigneeID
	t.Status = in.Status
	t.Priority = in.Priority
	t.DueDate = in.DueDate
	t.ProgressMode = in.ProgressMode
	t.ProgressPercentage = models.ClampPercent(in.ProgressPercentage)
	t.ProgressGoal = in.ProgressGoal
	t.ProgressCurrent = in.ProgressCurrent
}

func (f *Fake) createTask(w http.ResponseWriter, r *http.Request) {
	var in api.TaskInput
	if !decode(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &models.Task{ID: f.nextID("task")}
	applyTaskInput(t, &in)
	f.Tasks[t.ID] = t
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Task created", "task": t})
}

func (f *Fake) updateTask(w http.ResponseWriter, r *http.Request) {
	var in api.TaskInput
	if !decode(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tasks[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Task")
		return
	}
	applyTaskInput(t, &in)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task updated"})
}

func (f *Fake) deleteTask(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := f.Tasks[id]; !ok {
		notFound(w, "Task")
		return
	}
	delete(f.Tasks, id)
	w.WriteHeader(http.StatusNoContent)
}

func (f *Fake) updateProgress(w http.ResponseWriter, r *http.Request) {
	var in models.ProgressUpdate
	if !decode(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tasks[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Task")
		return
	}
	t.ProgressMode = in.ProgressMode
	t.ProgressPercentage = models.ClampPercent(in.ProgressPercentage)
	switch in.ProgressMode {
	case models.ProgressModeTarget:
		t.ProgressGoal, t.ProgressCurrent = in.ProgressGoal, in.ProgressCurrent
	case models.ProgressModeSteps:
		t.Steps = in.Steps
		for i := range t.Steps {
			if t.Steps[i].ID == "" {
				t.Steps[i].ID = f.nextID("step")
			}
		}
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Progress updated"})
}

func (f *Fake) incrementProgress(w http.ResponseWriter, r *http.Request) {
	var in api.IncrementRequest
	if !decode(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tasks[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Task")
		return
	}
	current := in.Increment
	if t.ProgressCurrent != nil {
		current += *t.ProgressCurrent
	}
	t.ProgressCurrent = &current
	t.ProgressPercentage = models.ClampPercent(in.ProgressPercentage)
	if in.Status != nil {
		t.Status = *in.Status
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Progress incremented"})
}

func (f *Fake) addStep(w http.ResponseWriter, r *http.Request) {
	var step models.Step
	if !decode(w, r, &step) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.Tasks[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Task")
		return
	}
	step.ID = f.nextID("step")
	step.Position = len(t.Steps)
	t.Steps = append(t.Steps, step)
	writeJSON(w, http.StatusCreated, step)
}

func (f *Fake) listProjects(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"projects": sortedValues(f.Projects)})
}

func (f *Fake) getProject(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Projects[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func applyProjectInput(p *models.Project, in *api.ProjectInput) {
	p.Name = in.Name
	p.Description = in.Description
	p.Status = in.Status
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
}

func (f *Fake) createProject(w http.ResponseWriter, r *http.Request) {
	var in api.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &models.Project{ID: f.nextID("project")}
	applyProjectInput(p, &in)
	f.Projects[p.ID] = p
	writeJSON(w, http.StatusCreated, p)
}

func (f *Fake) updateProject(w http.ResponseWriter, r *http.Request) {
	var in api.ProjectInput
	if !decode(w, r, &in) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.Projects[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Project")
		return
	}
	applyProjectInput(p, &in)
	writeJSON(w, http.StatusOK, p)
}

func (f *Fake) deleteProject(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Projects, chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (f *Fake) listQuotations(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, sortedValues(f.Quotations))
}

func (f *Fake) getQuotation(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.Quotations[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Quotation")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (f *Fake) createQuotation(w http.ResponseWriter, r *http.Request) {
	var q models.Quotation
	if !decode(w, r, &q) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = f.nextID("quotation")
	f.Quotations[q.ID] = &q
	writeJSON(w, http.StatusCreated, map[string]any{"quotation": q})
}

func (f *Fake) updateQuotation(w http.ResponseWriter, r *http.Request) {
	var q models.Quotation
	if !decode(w, r, &q) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := f.Quotations[id]; !ok {
		notFound(w, "Quotation")
		return
	}
	q.ID = id
	f.Quotations[id] = &q
	writeJSON(w, http.StatusOK, map[string]string{"message": "Quotation updated"})
}

func (f *Fake) deleteQuotation(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Quotations, chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (f *Fake) listInvoices(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, sortedValues(f.Invoices))
}

func (f *Fake) getInvoice(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.Invoices[chi.URLParam(r, "id")]
	if !ok {
		notFound(w, "Invoice")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (f *Fake) createInvoice(w http.ResponseWriter, r *http.Request) {
	var inv models.Invoice
	if !decode(w, r, &inv) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	inv.ID = f.nextID("invoice")
	f.Invoices[inv.ID] = &inv
	writeJSON(w, http.StatusCreated, map[string]any{"invoice": inv})
}

func (f *Fake) updateInvoice(w http.ResponseWriter, r *http.Request) {
	var inv models.Invoice
	if !decode(w, r, &inv) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := f.Invoices[id]; !ok {
		notFound(w, "Invoice")
		return
	}
	inv.ID = id
	f.Invoices[id] = &inv
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invoice updated"})
}

func (f *Fake) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.Invoices, chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (f *Fake) pdf(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/pdf")
	io.WriteString(w, "%PDF-1.4 "+chi.URLParam(r, "id"))
}

func (f *Fake) sendEmail(w http.ResponseWriter, r *http.Request) {
	var req api.EmailRequest
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Email sent to " + req.RecipientEmail})
}

func (f *Fake) recordPayment(w http.ResponseWriter, r *http.Request) {
	var p models.Payment
	if !decode(w, r, &p) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID("payment")
	p.InvoiceID = chi.URLParam(r, "id")
	f.Payments[p.ID] = &p
	f.settleInvoice(p.InvoiceID)
	writeJSON(w, http.StatusCreated, p)
}

func (f *Fake) invoicePayments(invoiceID string) []models.Payment {
	out := []models.Payment{}
	for _, p := range sortedValues(f.Payments) {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out
}

func (f *Fake) summary(invoiceID string) models.PaymentSummary {
	total := decimal.Zero
	if inv, ok := f.Invoices[invoiceID]; ok {
		total = inv.TotalAmount
	}
	paid := decimal.Zero
	for _, p := range f.invoicePayments(invoiceID) {
		paid = paid.Add(p.AmountPaid)
	}
	return models.PaymentSummary{InvoiceTotal: total, TotalPaid: paid, BalanceDue: total.Sub(paid)}
}

// settleInvoice mirrors the server deriving Paid / Partially Paid from payments.
func (f *Fake) settleInvoice(invoiceID string) {
	inv, ok := f.Invoices[invoiceID]
	if !ok {
		return
	}
	s := f.summary(invoiceID)
	switch {
	case !s.BalanceDue.IsPositive():
		inv.Status = models.InvoiceStatusPaid
	case s.TotalPaid.IsPositive():
		inv.Status = models.InvoiceStatusPartiallyPaid
	default:
		inv.Status = models.InvoiceStatusSent
	}
}

func (f *Fake) listPayments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"payments": f.invoicePayments(chi.URLParam(r, "id"))})
}

func (f *Fake) paymentSummary(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.summary(chi.URLParam(r, "id")))
}

func (f *Fake) reversePayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ReversalAccountID string `json:"reversal_account_id"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.ReversalAccountID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "reversal_account_id is required"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := chi.URLParam(r, "id")
	p, ok := f.Payments[id]
	if !ok {
		notFound(w, "Payment")
		return
	}
	delete(f.Payments, id)
	f.settleInvoice(p.InvoiceID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Payment reversed"})
}

func (f *Fake) listCustomers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.Customers)
}

func (f *Fake) searchCustomers(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(r.URL.Query().Get("query"))
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Customer{}
	for _, c := range f.Customers {
		if strings.Contains(strings.ToLower(c.Name), q) {
			out = append(out, c)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *Fake) listUsers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.Users)
}

func (f *Fake) getProfile(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.Profile)
}

func (f *Fake) listProducts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.Products)
}

func (f *Fake) listAccounts(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.Accounts)
}
