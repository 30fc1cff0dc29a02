package notifier

import (
	"fmt"
	"html"
	"strings"
)

func subject(c Confirmation) string {
	return fmt.Sprintf("Pedido #%d confirmado - obrigado pela sua compra!", c.OrderID)
}

func bodyText(c Confirmation) string {
	var items strings.Builder
	for _, it := range c.Items {
		items.WriteString("- " + it + "\n")
	}
	return fmt.Sprintf(
		"Olá %s,\n\nSeu pedido #%d foi aprovado.\n\n"+
			"Itens:\n%s\nTotal: R$ %s\n\n"+
			"Avisaremos quando o pedido for enviado.\n\nAtenciosamente,\nEquipe da Loja",
		c.CustomerName, c.OrderID, items.String(), c.Total.StringFixed(2))
}

func bodyHTML(c Confirmation) string {
	var items strings.Builder
	for _, it := range c.Items {
		items.WriteString("<li>" + html.EscapeString(it) + "</li>")
	}
	return fmt.Sprintf(`
        <html>
        <body>
            <p>Olá %s,</p>
            <p>Seu pedido #%d foi aprovado.</p>
            <p><strong>Itens:</strong></p>
            <ul>%s</ul>
            <p><strong>Total: R$ %s</strong></p>
            <p>Avisaremos quando o pedido for enviado.</p>
            <p>Atenciosamente,</p>
            <p>Equipe da Loja</p>
        </body>
        </html>`, html.EscapeString(c.CustomerName), c.OrderID, items.String(), c.Total.StringFixed(2))
}

func smsText(c Confirmation) string {
	return fmt.Sprintf("Seu pedido #%d foi aprovado! Total: R$ %s. Obrigado por comprar conosco!", c.OrderID, c.Total.StringFixed(2))
}
