package services

import (
	"bytes"
	"html/template"
	"time"

	"github.com/freshwash/freshwash-api/models"
)

var orderConfirmationTmpl = template.Must(template.New("orderConfirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #3b82f6; color: white; padding: 20px; text-align: center;">
      <h1 style="margin: 0;">FreshWash Laundry</h1>
      <p style="margin: 5px 0;">Clean Clothes, Happy You</p>
    </div>
    <div style="padding: 20px; background: #f9f9f9;">
      <h2>Order Confirmation</h2>
      <p>Dear {{.CustomerName}},</p>
      <p>Thank you for your order! We've received your laundry request and will process it shortly.</p>
      <p><strong>Order Number:</strong> {{.OrderID}}</p>
      <p><strong>Order Date:</strong> {{.OrderDate}}</p>
      <table style="width: 100%; border-collapse: collapse;">
        <tr style="background: #f0f0f0;">
          <th style="padding: 10px; text-align: left;">Service</th>
          <th style="padding: 10px; text-align: center;">Quantity</th>
          <th style="padding: 10px; text-align: right;">Subtotal</th>
        </tr>
        {{range .Items}}
        <tr>
          <td style="padding: 10px; border-bottom: 1px solid #eee;">{{.Name}} ({{.ServiceType}})</td>
          <td style="padding: 10px; border-bottom: 1px solid #eee; text-align: center;">{{.Quantity}}</td>
          <td style="padding: 10px; border-bottom: 1px solid #eee; text-align: right;">&#8377;{{printf "%.2f" .Subtotal}}</td>
        </tr>
        {{end}}
        <tr style="background: #f0f0f0; font-weight: bold;">
          <td style="padding: 10px;" colspan="2">Total</td>
          <td style="padding: 10px; text-align: right;">&#8377;{{printf "%.2f" .TotalPrice}}</td>
        </tr>
      </table>
      <p>We will pick up from: {{.Address}}</p>
    </div>
  </div>
</body>
</html>`))

var statusUpdateTmpl = template.Must(template.New("statusUpdate").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background: #3b82f6; color: white; padding: 20px; text-align: center;">
      <h1 style="margin: 0;">FreshWash Laundry</h1>
    </div>
    <div style="padding: 20px; background: #f9f9f9;">
      <h2>Order Status Update</h2>
      <p>Dear {{.CustomerName}},</p>
      <p>The status of your order <strong>#{{.OrderID}}</strong> changed from
         <strong>{{.OldStatus}}</strong> to <strong>{{.NewStatus}}</strong>.</p>
      <p><a href="{{.OrderURL}}">View your order</a></p>
    </div>
  </div>
</body>
</html>`))

var contactAckTmpl = template.Must(template.New("contactAcknowledgment").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>We received your message</h2>
    <p>Dear {{.CustomerName}},</p>
    <p>Thank you for contacting FreshWash Laundry. Our team will get back to you shortly.</p>
    <p><strong>Subject:</strong> {{.Subject}}</p>
    <p><strong>Reference:</strong> {{.ContactID}}</p>
  </div>
</body>
</html>`))

var contactAdminTmpl = template.Must(template.New("contactAdminAlert").Parse(`<h3>New Contact Message Received</h3>
<p><strong>From:</strong> {{.Name}} ({{.Email}})</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Category:</strong> {{.Category}}</p>
<p><strong>Priority:</strong> {{.Priority}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>
<hr>
<p>Contact ID: {{.ID}}</p>
<p>Received: {{.Received}}</p>`))

type confirmationItem struct {
	Name        string
	ServiceType string
	Quantity    int
	Subtotal    float64
}

func renderOrderConfirmation(customerName string, order *models.Order) (string, error) {
	items := make([]confirmationItem, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		name := "Service"
		if item.Service != nil {
			name = item.Service.Name
		}
		items = append(items, confirmationItem{
			Name:        name,
			ServiceType: item.ServiceType,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}

	data := struct {
		CustomerName string
		OrderID      uint
		OrderDate    string
		Items        []confirmationItem
		TotalPrice   float64
		Address      string
	}{
		CustomerName: customerName,
		OrderID:      order.ID,
		OrderDate:    order.CreatedAt.Format("02 Jan 2006"),
		Items:        items,
		TotalPrice:   order.TotalPrice,
		Address:      formatAddress(order.ShippingAddress),
	}

	var buf bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderStatusUpdate(customerName string, order *models.Order, oldStatus, newStatus, orderURL string) (string, error) {
	data := struct {
		CustomerName string
		OrderID      uint
		OldStatus    string
		NewStatus    string
		OrderURL     string
	}{customerName, order.ID, oldStatus, newStatus, orderURL}

	var buf bytes.Buffer
	if err := statusUpdateTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderContactAcknowledgment(customerName string, contact *models.Contact) (string, error) {
	data := struct {
		CustomerName string
		Subject      string
		ContactID    uint
	}{customerName, contact.Subject, contact.ID}

	var buf bytes.Buffer
	if err := contactAckTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderContactAdminAlert(contact *models.Contact) (string, error) {
	data := struct {
		Name     string
		Email    string
		Subject  string
		Category string
		Priority string
		Message  string
		ID       uint
		Received string
	}{
		Name:     contact.Name,
		Email:    contact.Email,
		Subject:  contact.Subject,
		Category: contact.Category,
		Priority: contact.Priority,
		Message:  contact.Message,
		ID:       contact.ID,
		Received: time.Now().Format(time.RFC1123),
	}

	var buf bytes.Buffer
	if err := contactAdminTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatAddress(a models.ShippingAddress) string {
	s := a.Street + ", " + a.City + ", " + a.State + " " + a.ZipCode
	if a.Country != "" {
		s += ", " + a.Country
	}
	return s
}
