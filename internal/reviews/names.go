package reviews

var firstNames = []string{
	"Ana", "Beatriz", "Bruno", "Camila", "Carlos", "Daniela", "Diego", "Eduarda",
	"Fernanda", "Felipe", "Gabriel", "Gabriela", "Helena", "Igor", "Isabela", "João",
	"Juliana", "Larissa", "Leonardo", "Letícia", "Lucas", "Luana", "Marcelo", "Mariana",
	"Mateus", "Natália", "Paulo", "Patrícia", "Rafael", "Renata", "Rodrigo", "Sofia",
	"Thiago", "Vanessa", "Vinícius", "Yasmin",
}

var middleNames = []string{
	"Alves", "Aparecida", "Barbosa", "Cardoso", "Cristina", "da Costa", "da Silva", "de Jesus",
	"de Souza", "dos Santos", "Eduardo", "Fernandes", "Gomes", "Henrique", "Lima", "Luiz",
	"Maria", "Martins", "Moreira", "Nascimento", "Pereira", "Ribeiro", "Rocha", "Teixeira",
}

var lastNames = []string{
	"Almeida", "Araújo", "Azevedo", "Barros", "Batista", "Borges", "Campos", "Carvalho",
	"Castro", "Correia", "Dias", "Duarte", "Freitas", "Lopes", "Machado", "Melo",
	"Mendes", "Monteiro", "Moura", "Nogueira", "Oliveira", "Pinto", "Ramos", "Reis",
	"Rodrigues", "Santana", "Silveira", "Soares", "Vieira",
}
